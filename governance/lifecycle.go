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

package governance

import (
	"fmt"

	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

// CreateProposal registers a proposal to pay amount of an asset to the
// recipient and returns its id. Voting runs for the configured voting period
func (g *Governance) CreateProposal(
	txn *host.Txn,
	description string,
	recipient types.Address,
	amount uint64,
	assetId types.Address,
) (uint64, error) {
	proposer := txn.Caller()
	if description == "" {
		return 0, ErrEmptyDescription
	}
	if recipient.IsZero() {
		return 0, ErrInvalidRecipient
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	if g.config.Ledger.VotingPower(proposer) < g.params.ProposalThreshold {
		return 0, ErrInsufficientVotingPower
	}
	proposalId := g.lastId + 1
	startTime := txn.Now()
	p := &Proposal{
		Id:          proposalId,
		Proposer:    proposer,
		Description: description,
		Recipient:   recipient,
		Amount:      amount,
		Asset:       assetId,
		StartTime:   startTime,
		EndTime:     startTime.Add(g.params.VotingPeriod),
		Quorum:      g.params.Quorum,
		votes:       make(map[types.Address]VoteInfo),
	}
	host.SetValue(txn, &g.lastId, proposalId)
	host.SetMapValue(txn, g.proposals, proposalId, p)
	g.metrics.created(txn)
	txn.Emit(
		event.ProposalCreatedEventType,
		event.ProposalCreatedEvent{
			ProposalId:  proposalId,
			Proposer:    proposer,
			Description: description,
			Recipient:   recipient,
			Amount:      amount,
			Asset:       assetId,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
			Quorum:      p.Quorum,
		},
	)
	g.config.Logger.Info(
		"created proposal",
		"proposal_id", proposalId,
		"proposer", proposer.String(),
		"end_time", p.EndTime,
	)
	return proposalId, nil
}

// Vote records the caller's choice with its full current voting power.
// Voting opens strictly after the start time and closes at the end time
func (g *Governance) Vote(txn *host.Txn, proposalId uint64, support bool) error {
	voter := txn.Caller()
	p, ok := g.proposals[proposalId]
	if !ok {
		return ErrProposalNotFound
	}
	now := txn.Now()
	if !now.After(p.StartTime) {
		return ErrVotingNotStarted
	}
	if !now.Before(p.EndTime) {
		return ErrVotingEnded
	}
	if p.votes[voter].HasVoted {
		return ErrAlreadyVoted
	}
	if p.Executed {
		return ErrAlreadyExecuted
	}
	if p.Canceled {
		return ErrProposalCanceled
	}
	weight := g.config.Ledger.VotingPower(voter)
	if weight == 0 {
		return ErrNoVotingPower
	}
	tally := &p.AgainstVotes
	if support {
		tally = &p.ForVotes
	}
	newTally, err := types.AddAmount(*tally, weight)
	if err != nil {
		return err
	}
	host.SetValue(txn, tally, newTally)
	host.SetMapValue(
		txn,
		p.votes,
		voter,
		VoteInfo{HasVoted: true, Support: support, Weight: weight},
	)
	g.metrics.voted(txn, support)
	txn.Emit(
		event.VoteCastEventType,
		event.VoteCastEvent{
			ProposalId:   proposalId,
			Voter:        voter,
			Support:      support,
			Weight:       weight,
			ForVotes:     p.ForVotes,
			AgainstVotes: p.AgainstVotes,
		},
	)
	g.config.Logger.Debug(
		"vote cast",
		"proposal_id", proposalId,
		"voter", voter.String(),
		"support", support,
		"weight", weight,
	)
	return nil
}

// CancelProposal ends a proposal without execution. Only the proposer or an
// administrator may cancel
func (g *Governance) CancelProposal(txn *host.Txn, proposalId uint64) error {
	caller := txn.Caller()
	p, ok := g.proposals[proposalId]
	if !ok {
		return ErrProposalNotFound
	}
	if p.Canceled {
		return ErrAlreadyCanceled
	}
	if p.Executed {
		return ErrAlreadyExecuted
	}
	if caller != p.Proposer && !g.isAdministrator(caller) {
		return ErrNotAuthorized
	}
	host.SetValue(txn, &p.Canceled, true)
	g.metrics.canceled(txn)
	txn.Emit(
		event.ProposalCanceledEventType,
		event.ProposalCanceledEvent{
			ProposalId: proposalId,
			CanceledBy: caller,
		},
	)
	g.config.Logger.Info(
		"canceled proposal",
		"proposal_id", proposalId,
		"canceled_by", caller.String(),
	)
	return nil
}

// ExecuteProposal releases the proposal's funds once voting has ended with
// quorum and majority support. Anyone may execute
func (g *Governance) ExecuteProposal(txn *host.Txn, proposalId uint64) error {
	release, err := g.executeGuard.Enter()
	if err != nil {
		return err
	}
	defer release()
	p, ok := g.proposals[proposalId]
	if !ok {
		return ErrProposalNotFound
	}
	if p.Executed {
		return ErrAlreadyExecuted
	}
	if p.Canceled {
		return ErrProposalCanceled
	}
	if txn.Now().Before(p.EndTime) {
		return ErrVotingNotEnded
	}
	if !p.quorumReached() {
		return ErrQuorumNotReached
	}
	// Ties fail
	if p.ForVotes <= p.AgainstVotes {
		return ErrInsufficientSupport
	}
	if g.treasury == nil {
		return ErrInvalidTreasury
	}
	// Mark as executed before calling out to the treasury
	host.SetValue(txn, &p.Executed, true)
	err = txn.Call(g.config.Address, func(txn *host.Txn) error {
		if err := g.treasury.ApproveProposal(txn, proposalId); err != nil {
			return fmt.Errorf("approve proposal %d: %w", proposalId, err)
		}
		if err := g.treasury.SpendFunds(txn, proposalId, p.Recipient, p.Amount, p.Asset); err != nil {
			return fmt.Errorf("spend funds for proposal %d: %w", proposalId, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	g.metrics.executed(txn)
	txn.Emit(
		event.ProposalExecutedEventType,
		event.ProposalExecutedEvent{
			ProposalId:   proposalId,
			Recipient:    p.Recipient,
			Amount:       p.Amount,
			Asset:        p.Asset,
			ForVotes:     p.ForVotes,
			AgainstVotes: p.AgainstVotes,
		},
	)
	g.config.Logger.Info(
		"executed proposal",
		"proposal_id", proposalId,
		"for_votes", p.ForVotes,
		"against_votes", p.AgainstVotes,
	)
	return nil
}
