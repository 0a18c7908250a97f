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

package treasury

import (
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

// ApproveProposal opens the approval gate for a proposal. Only the
// registered governance engine may approve
func (t *Treasury) ApproveProposal(txn *host.Txn, proposalId uint64) error {
	if !t.isGovernance(txn.Caller()) {
		return ErrUnauthorized
	}
	if t.approved[proposalId] {
		return ErrAlreadyApproved
	}
	host.SetMapValue(txn, t.approved, proposalId, true)
	t.metrics.approved(txn)
	txn.Emit(
		event.ProposalApprovedEventType,
		event.ProposalApprovedEvent{ProposalId: proposalId},
	)
	t.config.Logger.Debug(
		"approved proposal",
		"proposal_id", proposalId,
	)
	return nil
}

// SpendFunds releases funds for an approved proposal, at most once
func (t *Treasury) SpendFunds(
	txn *host.Txn,
	proposalId uint64,
	recipient types.Address,
	amount uint64,
	assetId types.Address,
) error {
	release, err := t.spendGuard.Enter()
	if err != nil {
		return err
	}
	defer release()
	if recipient.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if !t.approved[proposalId] {
		return ErrNotApproved
	}
	if t.executed[proposalId] {
		return ErrAlreadyExecuted
	}
	if !t.isGovernance(txn.Caller()) {
		return ErrUnauthorized
	}
	// Mark as executed before any value leaves custody
	host.SetMapValue(txn, t.executed, proposalId, true)
	balance, err := t.payout(txn, recipient, amount, assetId)
	if err != nil {
		return err
	}
	t.metrics.spent(txn, assetId, amount)
	txn.Emit(
		event.FundsSpentEventType,
		event.FundsSpentEvent{
			ProposalId: proposalId,
			Recipient:  recipient,
			Amount:     amount,
			Asset:      assetId,
			Balance:    balance,
		},
	)
	t.config.Logger.Info(
		"released treasury funds",
		"proposal_id", proposalId,
		"recipient", recipient.String(),
		"amount", amount,
		"asset", assetId.String(),
	)
	return nil
}

// EmergencyWithdraw moves funds out of custody without going through the
// approval gate. Only administrators may withdraw
func (t *Treasury) EmergencyWithdraw(
	txn *host.Txn,
	assetId types.Address,
	amount uint64,
	recipient types.Address,
) error {
	release, err := t.withdraw.Enter()
	if err != nil {
		return err
	}
	defer release()
	if recipient.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if !t.isAdministrator(txn.Caller()) {
		return ErrUnauthorized
	}
	balance, err := t.payout(txn, recipient, amount, assetId)
	if err != nil {
		return err
	}
	txn.Emit(
		event.EmergencyWithdrawalEventType,
		event.EmergencyWithdrawalEvent{
			Recipient: recipient,
			Amount:    amount,
			Asset:     assetId,
			Balance:   balance,
		},
	)
	t.config.Logger.Warn(
		"emergency withdrawal",
		"caller", txn.Caller().String(),
		"recipient", recipient.String(),
		"amount", amount,
		"asset", assetId.String(),
	)
	return nil
}

// payout transfers from the custody account and returns the remaining pool
// balance of the asset
func (t *Treasury) payout(
	txn *host.Txn,
	recipient types.Address,
	amount uint64,
	assetId types.Address,
) (uint64, error) {
	token, err := t.config.Assets.Token(assetId)
	if err != nil {
		return 0, err
	}
	if token.BalanceOf(t.config.Address) < amount {
		return 0, ErrInsufficientBalance
	}
	err = txn.Call(t.config.Address, func(txn *host.Txn) error {
		return token.TransferFrom(txn, t.config.Address, recipient, amount)
	})
	if err != nil {
		return 0, err
	}
	return token.BalanceOf(t.config.Address), nil
}

// FundNative deposits native value from the caller into custody
func (t *Treasury) FundNative(txn *host.Txn, amount uint64) error {
	return t.fund(txn, types.NativeAsset, amount)
}

// FundAsset deposits a non-native asset from the caller into custody
func (t *Treasury) FundAsset(
	txn *host.Txn,
	assetId types.Address,
	amount uint64,
) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if assetId.IsZero() {
		return ErrInvalidAsset
	}
	return t.fund(txn, assetId, amount)
}

func (t *Treasury) fund(
	txn *host.Txn,
	assetId types.Address,
	amount uint64,
) error {
	release, err := t.fundGuard.Enter()
	if err != nil {
		return err
	}
	defer release()
	if amount == 0 {
		return ErrInvalidAmount
	}
	token, err := t.config.Assets.Token(assetId)
	if err != nil {
		return err
	}
	funder := txn.Caller()
	if err := token.TransferFrom(txn, funder, t.config.Address, amount); err != nil {
		return err
	}
	t.metrics.funded(txn, assetId, amount)
	txn.Emit(
		event.TreasuryFundedEventType,
		event.TreasuryFundedEvent{
			Funder:  funder,
			Amount:  amount,
			Asset:   assetId,
			Balance: token.BalanceOf(t.config.Address),
		},
	)
	return nil
}
