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

package governance_test

import (
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/asset"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/ledger"
	"github.com/blinklabs-io/gavel/treasury"
	"github.com/blinklabs-io/gavel/types"
)

const day = 24 * time.Hour

var (
	owner     = types.BytesToAddress([]byte{0x01})
	proposer  = types.BytesToAddress([]byte{0xa1})
	voter     = types.BytesToAddress([]byte{0xb0})
	recipient = types.BytesToAddress([]byte{0xee})
	ledgerId  = types.BytesToAddress([]byte{0x10, 0x01})
	custody   = types.BytesToAddress([]byte{0x10, 0x02})
	engineId  = types.BytesToAddress([]byte{0x10, 0x03})
	t0        = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

var defaultParams = governance.Params{
	ProposalThreshold: 5,
	Quorum:            20,
	VotingPeriod:      3 * day,
}

type fixture struct {
	gov      *governance.Governance
	ledger   *ledger.Ledger
	treasury *treasury.Treasury
	native   *asset.Bank
}

func runAt(caller types.Address, at time.Time, fn func(*host.Txn) error) error {
	return host.NewTxn(caller, at).Do(fn)
}

func newFixture(t *testing.T, balances map[types.Address]uint64) *fixture {
	t.Helper()
	roles := access.NewRoles(owner)
	l := ledger.NewLedger(ledger.LedgerConfig{
		Address:    ledgerId,
		Authorizer: roles,
	})
	native := asset.NewBank(types.NativeAsset, roles)
	assets := asset.NewRegistry()
	assets.Register(types.NativeAsset, native)
	assets.Register(ledgerId, l)
	tr := treasury.NewTreasury(treasury.TreasuryConfig{
		Address:    custody,
		Governance: engineId,
		Assets:     assets,
		Authorizer: roles,
	})
	gov, err := governance.NewGovernance(governance.GovernanceConfig{
		Address:      engineId,
		Ledger:       l,
		Treasury:     tr,
		Authorizer:   roles,
		Params:       defaultParams,
		PromRegistry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	require.NoError(t, runAt(owner, t0, func(txn *host.Txn) error {
		for addr, amount := range balances {
			if err := l.Mint(txn, addr, amount); err != nil {
				return err
			}
		}
		if err := native.Mint(txn, owner, 100); err != nil {
			return err
		}
		return tr.FundNative(txn, 100)
	}))
	return &fixture{gov: gov, ledger: l, treasury: tr, native: native}
}

func (f *fixture) propose(t *testing.T, amount uint64) uint64 {
	t.Helper()
	var proposalId uint64
	require.NoError(t, runAt(proposer, t0, func(txn *host.Txn) error {
		var err error
		proposalId, err = f.gov.CreateProposal(txn, "pay R", recipient, amount, types.NativeAsset)
		return err
	}))
	return proposalId
}

func (f *fixture) vote(at time.Time, caller types.Address, proposalId uint64, support bool) error {
	return runAt(caller, at, func(txn *host.Txn) error {
		return f.gov.Vote(txn, proposalId, support)
	})
}

func (f *fixture) execute(at time.Time, proposalId uint64) error {
	return runAt(recipient, at, func(txn *host.Txn) error {
		return f.gov.ExecuteProposal(txn, proposalId)
	})
}

func TestScenarioPassingProposalExecutes(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	proposalId := f.propose(t, 2)
	assert.Equal(t, uint64(1), proposalId)
	require.NoError(t, f.vote(t0.Add(2*day), voter, proposalId, true))
	require.NoError(t, f.vote(t0.Add(2*day), proposer, proposalId, true))

	txn := host.NewTxn(recipient, t0.Add(4*day))
	require.NoError(t, txn.Do(func(txn *host.Txn) error {
		return f.gov.ExecuteProposal(txn, proposalId)
	}))
	p, err := f.gov.GetProposal(proposalId)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.True(t, f.treasury.IsApproved(proposalId))
	assert.True(t, f.treasury.IsExecuted(proposalId))
	balance, err := f.treasury.Balance(types.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(98), balance)
	assert.Equal(t, uint64(2), f.native.BalanceOf(recipient))

	var evtTypes []event.EventType
	for _, evt := range txn.Events() {
		evtTypes = append(evtTypes, evt.Type)
	}
	assert.Equal(
		t,
		[]event.EventType{
			event.ProposalApprovedEventType,
			event.TransferEventType,
			event.FundsSpentEventType,
			event.ProposalExecutedEventType,
		},
		evtTypes,
	)

	err = f.execute(t0.Add(5*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrAlreadyExecuted)
	assert.ErrorIs(t, err, types.ErrStateConflict)
}

func TestScenarioSingleVoterQuorum(t *testing.T) {
	// A single 11-weight vote does not reach a quorum of 20
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	proposalId := f.propose(t, 2)
	require.NoError(t, f.vote(t0.Add(2*day), voter, proposalId, true))
	err := f.execute(t0.Add(4*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrQuorumNotReached)

	// With a quorum the voter can meet alone, execution succeeds
	f = newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	require.NoError(t, runAt(owner, t0, func(txn *host.Txn) error {
		return f.gov.UpdateConfiguration(txn, governance.Params{
			ProposalThreshold: 5,
			Quorum:            10,
			VotingPeriod:      3 * day,
		})
	}))
	proposalId = f.propose(t, 2)
	require.NoError(t, f.vote(t0.Add(2*day), voter, proposalId, true))
	require.NoError(t, f.execute(t0.Add(4*day), proposalId))
}

func TestScenarioInsufficientSupport(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11, owner: 20})
	proposalId := f.propose(t, 2)
	require.NoError(t, f.vote(t0.Add(2*day), voter, proposalId, false))
	require.NoError(t, f.vote(t0.Add(2*day), owner, proposalId, false))
	err := f.execute(t0.Add(4*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrInsufficientSupport)
	p, _ := f.gov.GetProposal(proposalId)
	assert.False(t, p.Executed)
	assert.Equal(t, uint64(31), p.AgainstVotes)
	state, err := f.gov.ProposalState(proposalId, t0.Add(4*day))
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalStateDefeated, state)
}

func TestScenarioQuorumNotReached(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 9})
	proposalId := f.propose(t, 2)
	require.NoError(t, f.vote(t0.Add(2*day), voter, proposalId, true))
	err := f.execute(t0.Add(4*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrQuorumNotReached)
	assert.ErrorIs(t, err, types.ErrInsufficientResource)
	assert.False(t, f.treasury.IsApproved(proposalId))
}

func TestTieFails(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 10, voter: 10})
	proposalId := f.propose(t, 2)
	require.NoError(t, f.vote(t0.Add(day), voter, proposalId, true))
	require.NoError(t, f.vote(t0.Add(day), proposer, proposalId, false))
	err := f.execute(t0.Add(3*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrInsufficientSupport)
}

func TestVotingBoundaries(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11, owner: 5})
	proposalId := f.propose(t, 2)
	err := f.vote(t0, voter, proposalId, true)
	assert.ErrorIs(t, err, governance.ErrVotingNotStarted)
	err = f.vote(t0.Add(3*day), voter, proposalId, true)
	assert.ErrorIs(t, err, governance.ErrVotingEnded)
	require.NoError(t, f.vote(t0.Add(time.Nanosecond), voter, proposalId, true))
	require.NoError(t, f.vote(t0.Add(3*day-time.Nanosecond), proposer, proposalId, true))
	err = f.execute(t0.Add(3*day-time.Nanosecond), proposalId)
	assert.ErrorIs(t, err, governance.ErrVotingNotEnded)
	// The end time itself counts as ended
	require.NoError(t, f.execute(t0.Add(3*day), proposalId))
}

func TestVoteFailures(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	at := t0.Add(day)
	assert.ErrorIs(t, f.vote(at, voter, 42, true), governance.ErrProposalNotFound)
	proposalId := f.propose(t, 2)
	require.NoError(t, f.vote(at, voter, proposalId, true))
	err := f.vote(at, voter, proposalId, false)
	assert.ErrorIs(t, err, governance.ErrAlreadyVoted)
	err = f.vote(at, recipient, proposalId, true)
	assert.ErrorIs(t, err, governance.ErrNoVotingPower)
	info, err := f.gov.GetVoteInfo(proposalId, voter)
	require.NoError(t, err)
	assert.Equal(t, governance.VoteInfo{HasVoted: true, Support: true, Weight: 11}, info)
	info, err = f.gov.GetVoteInfo(proposalId, recipient)
	require.NoError(t, err)
	assert.False(t, info.HasVoted)

	require.NoError(t, runAt(proposer, at, func(txn *host.Txn) error {
		return f.gov.CancelProposal(txn, proposalId)
	}))
	err = f.vote(at, proposer, proposalId, true)
	assert.ErrorIs(t, err, governance.ErrProposalCanceled)
}

func TestVoteAfterDelegation(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	proposalId := f.propose(t, 2)
	require.NoError(t, runAt(proposer, t0, func(txn *host.Txn) error {
		return f.ledger.Delegate(txn, voter, 9)
	}))
	require.NoError(t, f.vote(t0.Add(day), voter, proposalId, true))
	err := f.vote(t0.Add(day), proposer, proposalId, true)
	assert.ErrorIs(t, err, governance.ErrNoVotingPower)
	require.NoError(t, f.execute(t0.Add(3*day), proposalId))
}

func TestCreateProposalFailures(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 4})
	testDefs := []struct {
		caller      types.Address
		description string
		recipient   types.Address
		amount      uint64
		expectedErr error
	}{
		{caller: proposer, description: "", recipient: recipient, amount: 1, expectedErr: governance.ErrEmptyDescription},
		{caller: proposer, description: "x", recipient: types.ZeroAddress, amount: 1, expectedErr: governance.ErrInvalidRecipient},
		{caller: proposer, description: "x", recipient: recipient, amount: 0, expectedErr: governance.ErrInvalidAmount},
		{caller: voter, description: "x", recipient: recipient, amount: 1, expectedErr: governance.ErrInsufficientVotingPower},
	}
	for _, testDef := range testDefs {
		err := runAt(testDef.caller, t0, func(txn *host.Txn) error {
			_, err := f.gov.CreateProposal(txn, testDef.description, testDef.recipient, testDef.amount, types.NativeAsset)
			return err
		})
		assert.ErrorIs(t, err, testDef.expectedErr)
	}
	assert.Equal(t, uint64(0), f.gov.ProposalCount())
}

func TestCancelProposal(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	proposalId := f.propose(t, 2)
	cancel := func(caller types.Address, id uint64) error {
		return runAt(caller, t0.Add(day), func(txn *host.Txn) error {
			return f.gov.CancelProposal(txn, id)
		})
	}
	assert.ErrorIs(t, cancel(proposer, 99), governance.ErrProposalNotFound)
	assert.ErrorIs(t, cancel(voter, proposalId), governance.ErrNotAuthorized)
	require.NoError(t, cancel(owner, proposalId))
	assert.ErrorIs(t, cancel(proposer, proposalId), governance.ErrAlreadyCanceled)
	err := f.execute(t0.Add(4*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrProposalCanceled)
	state, _ := f.gov.ProposalState(proposalId, t0.Add(4*day))
	assert.Equal(t, governance.ProposalStateCanceled, state)

	// Executed proposals cannot be canceled
	second := f.propose(t, 1)
	require.NoError(t, f.vote(t0.Add(day), voter, second, true))
	require.NoError(t, f.vote(t0.Add(day), proposer, second, true))
	require.NoError(t, f.execute(t0.Add(3*day), second))
	assert.ErrorIs(t, cancel(proposer, second), governance.ErrAlreadyExecuted)
}

func TestFailedPayoutLeavesProposalUnexecuted(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	proposalId := f.propose(t, 500)
	require.NoError(t, f.vote(t0.Add(day), voter, proposalId, true))
	require.NoError(t, f.vote(t0.Add(day), proposer, proposalId, true))
	err := f.execute(t0.Add(3*day), proposalId)
	assert.ErrorIs(t, err, treasury.ErrInsufficientBalance)
	p, _ := f.gov.GetProposal(proposalId)
	assert.False(t, p.Executed)
	assert.False(t, f.treasury.IsApproved(proposalId))
	state, _ := f.gov.ProposalState(proposalId, t0.Add(3*day))
	assert.Equal(t, governance.ProposalStateSucceeded, state)
}

func TestExecuteRejectsReentry(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	first := f.propose(t, 2)
	second := f.propose(t, 3)
	for _, id := range []uint64{first, second} {
		require.NoError(t, f.vote(t0.Add(day), voter, id, true))
		require.NoError(t, f.vote(t0.Add(day), proposer, id, true))
	}
	var reentryErr error
	f.native.SetTransferHook(func(txn *host.Txn, from, to types.Address, amount uint64) error {
		reentryErr = f.gov.ExecuteProposal(txn, second)
		return nil
	})
	require.NoError(t, f.execute(t0.Add(3*day), first))
	assert.ErrorIs(t, reentryErr, host.ErrReentrantCall)
	p, _ := f.gov.GetProposal(second)
	assert.False(t, p.Executed)
}

func TestConfigurationSnapshot(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9, voter: 11})
	proposalId := f.propose(t, 2)
	err := runAt(voter, t0, func(txn *host.Txn) error {
		return f.gov.UpdateConfiguration(txn, defaultParams)
	})
	assert.ErrorIs(t, err, access.ErrNotAdministrator)
	err = runAt(owner, t0, func(txn *host.Txn) error {
		return f.gov.UpdateConfiguration(txn, governance.Params{Quorum: 1})
	})
	assert.ErrorIs(t, err, governance.ErrInvalidConfiguration)
	require.NoError(t, runAt(owner, t0, func(txn *host.Txn) error {
		return f.gov.UpdateConfiguration(txn, governance.Params{
			ProposalThreshold: 10,
			Quorum:            1,
			VotingPeriod:      day,
		})
	}))
	p, _ := f.gov.GetProposal(proposalId)
	assert.Equal(t, t0.Add(3*day), p.EndTime)
	assert.Equal(t, uint64(20), p.Quorum)
	// New threshold applies to new proposals
	err = runAt(proposer, t0, func(txn *host.Txn) error {
		_, err := f.gov.CreateProposal(txn, "x", recipient, 1, types.NativeAsset)
		return err
	})
	assert.ErrorIs(t, err, governance.ErrInsufficientVotingPower)
	require.NoError(t, f.vote(t0.Add(2*day), voter, proposalId, true))
	err = f.execute(t0.Add(2*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrVotingNotEnded)
	err = f.execute(t0.Add(3*day), proposalId)
	assert.ErrorIs(t, err, governance.ErrQuorumNotReached)
}

func TestSetTreasury(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9})
	assert.Equal(t, custody, f.gov.Treasury())
	err := runAt(proposer, t0, func(txn *host.Txn) error {
		return f.gov.SetTreasury(txn, f.treasury)
	})
	assert.ErrorIs(t, err, access.ErrNotAdministrator)
	err = runAt(owner, t0, func(txn *host.Txn) error {
		return f.gov.SetTreasury(txn, nil)
	})
	assert.ErrorIs(t, err, governance.ErrInvalidTreasury)
}

func TestListProposals(t *testing.T) {
	f := newFixture(t, map[types.Address]uint64{proposer: 9})
	for range 5 {
		f.propose(t, 1)
	}
	assert.Equal(t, uint64(5), f.gov.ProposalCount())
	page := f.gov.ListProposals(1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].Id)
	assert.Equal(t, uint64(3), page[1].Id)
	assert.Len(t, f.gov.ListProposals(0, 0), 5)
	assert.Empty(t, f.gov.ListProposals(5, 10))
	assert.Empty(t, f.gov.ListProposals(math.MaxUint64, 0))
}
