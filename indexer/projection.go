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

package indexer

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/types"
)

func (i *Indexer) project(evt event.Event, txn *gorm.DB) error {
	store := i.config.Store
	switch data := evt.Data.(type) {
	case event.ProposalCreatedEvent:
		return store.SetProposal(&models.Proposal{
			ID:          data.ProposalId,
			Proposer:    data.Proposer.Bytes(),
			Description: data.Description,
			Recipient:   data.Recipient.Bytes(),
			Asset:       data.Asset.Bytes(),
			Amount:      data.Amount,
			Quorum:      data.Quorum,
			StartTime:   data.StartTime,
			EndTime:     data.EndTime,
			AddedSeq:    evt.Sequence,
		}, txn)
	case event.VoteCastEvent:
		if err := store.SetVote(&models.Vote{
			ProposalID: data.ProposalId,
			Voter:      data.Voter.Bytes(),
			Support:    data.Support,
			Weight:     data.Weight,
			AddedSeq:   evt.Sequence,
		}, txn); err != nil {
			return err
		}
		return store.UpdateProposal(data.ProposalId, map[string]any{
			"for_votes":     data.ForVotes,
			"against_votes": data.AgainstVotes,
		}, txn)
	case event.ProposalCanceledEvent:
		return store.UpdateProposal(data.ProposalId, map[string]any{
			"canceled":    true,
			"canceled_by": data.CanceledBy.Bytes(),
		}, txn)
	case event.ProposalExecutedEvent:
		return store.UpdateProposal(data.ProposalId, map[string]any{
			"executed": true,
		}, txn)
	case event.ProposalApprovedEvent:
		return store.UpdateProposal(data.ProposalId, map[string]any{
			"approved": true,
		}, txn)
	case event.FundsSpentEvent:
		if err := store.UpdateProposal(data.ProposalId, map[string]any{
			"spent": true,
		}, txn); err != nil {
			return err
		}
		return store.SetTreasuryBalance(data.Asset.Bytes(), data.Balance, txn)
	case event.TreasuryFundedEvent:
		return store.SetTreasuryBalance(data.Asset.Bytes(), data.Balance, txn)
	case event.EmergencyWithdrawalEvent:
		return store.SetTreasuryBalance(data.Asset.Bytes(), data.Balance, txn)
	case event.TransferEvent:
		if !data.From.IsZero() {
			if err := i.setBalance(data.Asset, data.From, data.FromBalance, txn); err != nil {
				return err
			}
		}
		if !data.To.IsZero() {
			return i.setBalance(data.Asset, data.To, data.ToBalance, txn)
		}
		return nil
	case event.DelegatedEvent:
		return i.projectDelegation(data, true, txn)
	case event.UndelegatedEvent:
		return i.projectDelegation(event.DelegatedEvent(data), false, txn)
	}
	// Remaining events are only kept as event records
	return nil
}

func (i *Indexer) loadAccount(
	assetId types.Address,
	addr types.Address,
	txn *gorm.DB,
) (*models.Account, error) {
	account, err := i.config.Store.GetAccount(assetId.Bytes(), addr.Bytes(), txn)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = &models.Account{
			Asset:   assetId.Bytes(),
			Address: addr.Bytes(),
		}
	}
	return account, nil
}

func (i *Indexer) setBalance(
	assetId types.Address,
	addr types.Address,
	balance uint64,
	txn *gorm.DB,
) error {
	account, err := i.loadAccount(assetId, addr, txn)
	if err != nil {
		return err
	}
	account.Balance = balance
	return i.config.Store.SetAccount(account, txn)
}

func (i *Indexer) projectDelegation(
	data event.DelegatedEvent,
	delegated bool,
	txn *gorm.DB,
) error {
	token := i.config.GovernanceToken
	delegator, err := i.loadAccount(token, data.Delegator, txn)
	if err != nil {
		return err
	}
	delegator.Balance = data.DelegatorBalance
	if delegated {
		delegator.DelegatedAmount += data.Amount
	} else {
		if delegator.DelegatedAmount < data.Amount {
			return fmt.Errorf(
				"undelegation of %d exceeds projected amount %d",
				data.Amount,
				delegator.DelegatedAmount,
			)
		}
		delegator.DelegatedAmount -= data.Amount
	}
	delegator.Delegate = nil
	if data.Active {
		delegator.Delegate = data.Delegate.Bytes()
	}
	if err := i.config.Store.SetAccount(delegator, txn); err != nil {
		return err
	}
	delegate, err := i.loadAccount(token, data.Delegate, txn)
	if err != nil {
		return err
	}
	delegate.Balance = data.DelegateBalance
	delegate.DelegatedPower = data.DelegatedPower
	return i.config.Store.SetAccount(delegate, txn)
}
