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

package gavel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/tx"
	"github.com/blinklabs-io/gavel/types"
)

var (
	testOwner = types.MustParseAddress("0x00000000000000000000000000000000000000a0")
	testAlice = types.MustParseAddress("0x00000000000000000000000000000000000000a1")
	testBob   = types.MustParseAddress("0x00000000000000000000000000000000000000a2")
	testCarol = types.MustParseAddress("0x00000000000000000000000000000000000000a3")
	testStart = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func testGenesis() Genesis {
	return Genesis{
		Balances: map[types.Address]uint64{
			testAlice: 11,
			testBob:   10,
		},
		Treasury: map[types.Address]uint64{
			types.NativeAsset: 100,
		},
	}
}

func newTestNode(
	t *testing.T,
	clock *host.ManualClock,
	opts ...ConfigOptionFunc,
) *Node {
	t.Helper()
	opts = append(
		[]ConfigOptionFunc{
			WithOwner(testOwner),
			WithClock(clock),
			WithGenesis(testGenesis()),
			WithPrometheusRegistry(prometheus.NewRegistry()),
		},
		opts...,
	)
	n, err := New(NewConfig(opts...))
	require.NoError(t, err)
	require.NoError(t, n.Start(t.Context()))
	return n
}

func submit(t *testing.T, n *Node, txn tx.Tx) tx.Receipt {
	t.Helper()
	receipt, err := n.Submit(t.Context(), txn)
	require.NoError(t, err, "submit %s", txn.Type)
	return receipt
}

// runProposal creates, votes on and executes a proposal paying carol
func runProposal(t *testing.T, n *Node, clock *host.ManualClock) uint64 {
	t.Helper()
	receipt := submit(t, n, tx.Tx{
		Type:        tx.TypeCreateProposal,
		Caller:      testAlice,
		Description: "pay carol",
		Recipient:   testCarol,
		Amount:      10,
	})
	require.Contains(
		t,
		receipt.Events,
		string(event.ProposalCreatedEventType),
	)
	proposalId := receipt.ProposalId
	clock.Advance(time.Second)
	submit(t, n, tx.Tx{
		Type:       tx.TypeVote,
		Caller:     testAlice,
		ProposalId: proposalId,
		Support:    true,
	})
	submit(t, n, tx.Tx{
		Type:       tx.TypeVote,
		Caller:     testBob,
		ProposalId: proposalId,
		Support:    true,
	})
	clock.Advance(DefaultGovernanceParams.VotingPeriod)
	submit(t, n, tx.Tx{
		Type:       tx.TypeExecuteProposal,
		Caller:     testCarol,
		ProposalId: proposalId,
	})
	return proposalId
}

func TestConfigValidation(t *testing.T) {
	_, err := New(NewConfig())
	require.Error(t, err, "missing owner")

	_, err = New(NewConfig(
		WithOwner(testOwner),
		WithTreasuryAddress(DefaultLedgerAddress),
	))
	require.Error(t, err, "duplicate component addresses")

	_, err = New(NewConfig(
		WithOwner(testOwner),
		WithGenesis(Genesis{
			Balances: map[types.Address]uint64{types.ZeroAddress: 1},
		}),
	))
	require.Error(t, err, "genesis balance for the null address")

	_, err = New(NewConfig(
		WithOwner(testOwner),
		WithGovernanceParams(DefaultGovernanceParams),
	))
	require.NoError(t, err)
}

func TestSubmitBeforeStart(t *testing.T) {
	n, err := New(NewConfig(WithOwner(testOwner)))
	require.NoError(t, err)
	_, err = n.Submit(t.Context(), tx.Tx{
		Type:   tx.TypeBurn,
		Caller: testAlice,
		Amount: 1,
	})
	require.ErrorIs(t, err, ErrNodeNotStarted)
	_, err = n.GovernanceParams()
	require.ErrorIs(t, err, ErrNodeNotStarted)
}

func TestGovernanceLifecycle(t *testing.T) {
	clock := host.NewManualClock(testStart)
	n := newTestNode(t, clock)
	defer n.Stop() //nolint:errcheck

	params, err := n.GovernanceParams()
	require.NoError(t, err)
	assert.Equal(t, DefaultTreasuryAddress, params.Treasury)
	balance, err := n.TreasuryBalance(types.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)

	proposalId := runProposal(t, n, clock)
	assert.Equal(t, uint64(1), proposalId)

	proposal, err := n.Proposal(proposalId)
	require.NoError(t, err)
	assert.True(t, proposal.Executed)
	assert.Equal(t, "executed", proposal.State)
	assert.Equal(t, uint64(21), proposal.ForVotes)

	vote, err := n.VoteInfo(proposalId, testBob)
	require.NoError(t, err)
	assert.True(t, vote.HasVoted)
	assert.Equal(t, uint64(10), vote.Weight)

	account, err := n.Account(testCarol)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), account.Assets[types.NativeAsset])
	balance, err = n.TreasuryBalance(types.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), balance)

	custody, err := n.TreasuryProposal(proposalId)
	require.NoError(t, err)
	assert.True(t, custody.Approved)
	assert.True(t, custody.Executed)

	// Executing twice is rejected and changes nothing
	_, err = n.Submit(t.Context(), tx.Tx{
		Type:       tx.TypeExecuteProposal,
		Caller:     testAlice,
		ProposalId: proposalId,
	})
	require.Error(t, err)
	assert.Equal(t, "AlreadyExecuted", types.CodeOf(err))
	assert.Equal(t, types.KindStateConflict, types.KindOf(err))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.WaitForIndexer(ctx))
	events, err := n.Events(0, 0, string(event.ProposalExecutedEventType))
	require.NoError(t, err)
	require.Len(t, events, 1)
	var executed event.ProposalExecutedEvent
	require.NoError(t, json.Unmarshal(events[0].Data, &executed))
	assert.Equal(t, testCarol, executed.Recipient)

	stored, err := n.db.Metadata().GetProposal(proposalId, nil)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Executed)
	assert.True(t, stored.Spent)
	assert.Equal(t, uint64(21), stored.ForVotes)
}

func TestDelegationThroughSubmit(t *testing.T) {
	clock := host.NewManualClock(testStart)
	n := newTestNode(t, clock)
	defer n.Stop() //nolint:errcheck

	submit(t, n, tx.Tx{
		Type:    tx.TypeDelegate,
		Caller:  testAlice,
		Account: testBob,
		Amount:  5,
	})
	bob, err := n.Account(testBob)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), bob.VotingPower)
	assert.Equal(t, uint64(5), bob.DelegatedPower)
	alice, err := n.Account(testAlice)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), alice.VotingPower)
	assert.Equal(t, testBob, alice.Delegate)

	_, err = n.Submit(t.Context(), tx.Tx{
		Type:    tx.TypeDelegate,
		Caller:  testAlice,
		Account: testCarol,
		Amount:  1,
	})
	assert.Equal(t, "AlreadyDelegated", types.CodeOf(err))

	submit(t, n, tx.Tx{
		Type:   tx.TypeUndelegate,
		Caller: testAlice,
		Amount: 5,
	})
	alice, err = n.Account(testAlice)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), alice.VotingPower)
	assert.True(t, alice.Delegate.IsZero())
}

func TestFailedCallIsNotLogged(t *testing.T) {
	clock := host.NewManualClock(testStart)
	n := newTestNode(t, clock)
	defer n.Stop() //nolint:errcheck

	_, err := n.Submit(t.Context(), tx.Tx{
		Type:    tx.TypeMint,
		Caller:  testAlice,
		Amount:  5,
		Account: testAlice,
		Asset:   DefaultLedgerAddress,
	})
	require.Error(t, err)
	assert.Equal(t, types.KindAuthorization, types.KindOf(err))
	assert.Equal(t, uint64(0), n.db.Blob().LastSequence())

	receipt := submit(t, n, tx.Tx{
		Type:    tx.TypeMint,
		Caller:  testOwner,
		Amount:  5,
		Account: testCarol,
		Asset:   DefaultLedgerAddress,
	})
	assert.Equal(t, uint64(1), receipt.Sequence)
	carol, err := n.Account(testCarol)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), carol.Balance)
}

func TestRestartReplaysLog(t *testing.T) {
	dataDir := t.TempDir()
	clock := host.NewManualClock(testStart)
	n := newTestNode(t, clock, WithDatabasePath(dataDir))
	proposalId := runProposal(t, n, clock)
	require.NoError(t, n.Stop())

	clock = host.NewManualClock(testStart.Add(24 * 7 * time.Hour))
	n = newTestNode(t, clock, WithDatabasePath(dataDir))
	defer n.Stop() //nolint:errcheck

	proposal, err := n.Proposal(proposalId)
	require.NoError(t, err)
	assert.True(t, proposal.Executed)
	balance, err := n.TreasuryBalance(types.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), balance)
	vote, err := n.VoteInfo(proposalId, testAlice)
	require.NoError(t, err)
	assert.True(t, vote.HasVoted)

	// New work continues where the log left off
	receipt := submit(t, n, tx.Tx{
		Type:        tx.TypeCreateProposal,
		Caller:      testBob,
		Description: "second",
		Recipient:   testCarol,
		Amount:      1,
	})
	assert.Equal(t, uint64(2), receipt.ProposalId)
	assert.Equal(t, uint64(5), receipt.Sequence)

	// Replayed events are not projected twice
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.WaitForIndexer(ctx))
	created, err := n.Events(0, 0, string(event.ProposalCreatedEventType))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Less(t, created[0].Sequence, created[1].Sequence)
}

func TestApiServesNodeState(t *testing.T) {
	clock := host.NewManualClock(testStart)
	n := newTestNode(t, clock, WithApiListenAddress("127.0.0.1:0"))
	defer n.Stop() //nolint:errcheck
	require.NotNil(t, n.api)

	resp, err := http.Get(fmt.Sprintf(
		"http://%s/api/v0/treasury/balances/%s",
		n.api.Addr(),
		types.NativeAsset,
	))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "100", body.Balance)
}

func postWithdrawal(t *testing.T, n *Node) int {
	t.Helper()
	body := fmt.Sprintf(
		`{"type":"emergency_withdraw","caller":%q,"recipient":%q,"amount":100}`,
		testOwner,
		testCarol,
	)
	resp, err := http.Post(
		fmt.Sprintf("http://%s/api/v0/tx", n.api.Addr()),
		"application/json",
		strings.NewReader(body),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestApiSubmissionIsOptIn(t *testing.T) {
	clock := host.NewManualClock(testStart)
	n := newTestNode(t, clock, WithApiListenAddress("127.0.0.1:0"))
	defer n.Stop() //nolint:errcheck
	assert.Equal(t, http.StatusForbidden, postWithdrawal(t, n))
	balance, err := n.TreasuryBalance(types.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)

	enabled := newTestNode(
		t,
		host.NewManualClock(testStart),
		WithApiListenAddress("127.0.0.1:0"),
		WithApiSubmit(true),
	)
	defer enabled.Stop() //nolint:errcheck
	assert.Equal(t, http.StatusOK, postWithdrawal(t, enabled))
	balance, err = enabled.TreasuryBalance(types.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	n, err := New(NewConfig(WithOwner(testOwner)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	require.Eventually(t, n.isStarted, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("node did not stop")
	}
	assert.False(t, n.isStarted())
}
