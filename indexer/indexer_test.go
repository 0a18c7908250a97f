// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package indexer_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database/metadata/sqlite"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/indexer"
	"github.com/blinklabs-io/gavel/types"
)

var (
	token     = types.BytesToAddress([]byte{0x10, 0x01})
	proposer  = types.BytesToAddress([]byte{0xa1})
	voter     = types.BytesToAddress([]byte{0xa2})
	recipient = types.BytesToAddress([]byte{0xb1})
)

type testIndexer struct {
	bus     *event.EventBus
	store   *sqlite.MetadataStoreSqlite
	indexer *indexer.Indexer
	seq     uint64
}

func newTestIndexer(
	t *testing.T,
	store *sqlite.MetadataStoreSqlite,
) *testIndexer {
	t.Helper()
	bus := event.NewEventBus(nil, nil)
	idx, err := indexer.NewIndexer(indexer.IndexerConfig{
		EventBus:        bus,
		Store:           store,
		PromRegistry:    prometheus.NewRegistry(),
		GovernanceToken: token,
	})
	require.NoError(t, err)
	require.NoError(t, idx.Start())
	return &testIndexer{bus: bus, store: store, indexer: idx}
}

func newStore(t *testing.T) *sqlite.MetadataStoreSqlite {
	t.Helper()
	store, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func (ti *testIndexer) publish(evtType event.EventType, data any) {
	ti.seq++
	evt := event.NewEvent(evtType, data)
	evt.Sequence = ti.seq
	ti.bus.Publish(evt)
}

func TestNewIndexerRequiresDependencies(t *testing.T) {
	_, err := indexer.NewIndexer(indexer.IndexerConfig{})
	assert.Error(t, err)
	_, err = indexer.NewIndexer(indexer.IndexerConfig{
		EventBus: event.NewEventBus(nil, nil),
	})
	assert.Error(t, err)
}

func TestProposalLifecycleProjection(t *testing.T) {
	store := newStore(t)
	ti := newTestIndexer(t, store)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ti.publish(event.ProposalCreatedEventType, event.ProposalCreatedEvent{
		ProposalId:  1,
		Proposer:    proposer,
		Description: "pay the auditors",
		Recipient:   recipient,
		Amount:      10,
		StartTime:   start,
		EndTime:     start.Add(72 * time.Hour),
		Quorum:      20,
	})
	ti.publish(event.VoteCastEventType, event.VoteCastEvent{
		ProposalId: 1,
		Voter:      voter,
		Support:    true,
		Weight:     11,
		ForVotes:   11,
	})
	ti.publish(event.ProposalExecutedEventType, event.ProposalExecutedEvent{
		ProposalId: 1,
		ForVotes:   11,
	})
	ti.publish(event.ProposalApprovedEventType, event.ProposalApprovedEvent{
		ProposalId: 1,
	})
	ti.publish(event.FundsSpentEventType, event.FundsSpentEvent{
		ProposalId: 1,
		Recipient:  recipient,
		Amount:     10,
		Balance:    90,
	})
	ti.indexer.Stop()
	assert.Equal(t, uint64(5), ti.indexer.LastSequence())

	proposal, err := store.GetProposal(1, nil)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, "pay the auditors", proposal.Description)
	assert.Equal(t, uint64(11), proposal.ForVotes)
	assert.True(t, proposal.Executed)
	assert.True(t, proposal.Approved)
	assert.True(t, proposal.Spent)
	assert.False(t, proposal.Canceled)

	vote, err := store.GetVote(1, voter.Bytes(), nil)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, uint64(11), vote.Weight)

	balance, err := store.GetTreasuryBalance(types.NativeAsset.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), balance)

	checkpoint, err := store.GetCheckpoint(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), checkpoint)

	events, err := store.GetEvents(0, 0, string(event.VoteCastEventType), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	var voteData map[string]any
	require.NoError(t, json.Unmarshal(events[0].Data, &voteData))
	assert.Equal(t, voter.String(), voteData["Voter"])
}

func TestDelegationProjection(t *testing.T) {
	store := newStore(t)
	ti := newTestIndexer(t, store)
	ti.publish(event.TransferEventType, event.TransferEvent{
		Asset:     token,
		To:        proposer,
		Amount:    100,
		ToBalance: 100,
	})
	ti.publish(event.DelegatedEventType, event.DelegatedEvent{
		Delegator:        proposer,
		Delegate:         voter,
		Amount:           30,
		DelegatorBalance: 70,
		DelegateBalance:  30,
		DelegatedPower:   30,
		Active:           true,
	})
	ti.publish(event.UndelegatedEventType, event.UndelegatedEvent{
		Delegator:        proposer,
		Delegate:         voter,
		Amount:           10,
		DelegatorBalance: 80,
		DelegateBalance:  20,
		DelegatedPower:   20,
		Active:           true,
	})
	ti.indexer.Stop()

	account, err := store.GetAccount(token.Bytes(), proposer.Bytes(), nil)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, uint64(80), account.Balance)
	assert.Equal(t, uint64(20), account.DelegatedAmount)
	assert.Equal(t, voter.Bytes(), account.Delegate)

	account, err = store.GetAccount(token.Bytes(), voter.Bytes(), nil)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, uint64(20), account.Balance)
	assert.Equal(t, uint64(20), account.DelegatedPower)
}

func TestReplayedEventsAreSkipped(t *testing.T) {
	store := newStore(t)
	delegated := event.DelegatedEvent{
		Delegator:        proposer,
		Delegate:         voter,
		Amount:           30,
		DelegatorBalance: 70,
		DelegateBalance:  30,
		DelegatedPower:   30,
		Active:           true,
	}
	for range 2 {
		ti := newTestIndexer(t, store)
		ti.publish(event.DelegatedEventType, delegated)
		ti.indexer.Stop()
	}
	account, err := store.GetAccount(token.Bytes(), proposer.Bytes(), nil)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, uint64(30), account.DelegatedAmount)
}

func TestStopUnsubscribes(t *testing.T) {
	store := newStore(t)
	ti := newTestIndexer(t, store)
	ti.indexer.Stop()
	// Publishing after Stop must not block or panic
	ti.publish(event.ProposalCanceledEventType, event.ProposalCanceledEvent{
		ProposalId: 1,
	})
	assert.Equal(t, uint64(0), ti.indexer.LastSequence())
	assert.Error(t, ti.indexer.Start())
}
