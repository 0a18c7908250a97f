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
	"fmt"
	"time"

	"github.com/blinklabs-io/gavel/asset"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/tx"
	"github.com/blinklabs-io/gavel/types"
)

// Submit executes a transaction and appends it to the transaction log. The
// log entry is written as the last step of the call, so a failed call leaves
// no trace in either the state or the log
func (n *Node) Submit(ctx context.Context, t tx.Tx) (tx.Receipt, error) {
	if err := t.Validate(); err != nil {
		return tx.Receipt{}, err
	}
	// Hold off shutdown until the call has been logged
	n.mu.RLock()
	defer n.mu.RUnlock()
	if !n.started {
		return tx.Receipt{}, ErrNodeNotStarted
	}
	var receipt tx.Receipt
	events, err := n.executor.Run(
		ctx,
		string(t.Type),
		t.Caller,
		func(txn *host.Txn) error {
			proposalId, err := n.dispatch(txn, t)
			if err != nil {
				return err
			}
			blob := n.db.Blob()
			record := tx.Record{
				Sequence:  blob.LastSequence() + 1,
				Timestamp: txn.Now(),
				Tx:        t,
			}
			data, err := record.Encode()
			if err != nil {
				return fmt.Errorf("encode transaction record: %w", err)
			}
			seq, err := blob.Append(data)
			if err != nil {
				return err
			}
			receipt = tx.Receipt{
				Sequence:   seq,
				Timestamp:  txn.Now(),
				ProposalId: proposalId,
			}
			return nil
		},
	)
	if err != nil {
		return tx.Receipt{}, err
	}
	receipt.Events = make([]string, 0, len(events))
	for _, evt := range events {
		receipt.Events = append(receipt.Events, string(evt.Type))
	}
	return receipt, nil
}

// dispatch routes a transaction to the component that handles it. The
// returned id is only set for create_proposal
func (n *Node) dispatch(txn *host.Txn, t tx.Tx) (uint64, error) {
	switch t.Type {
	case tx.TypeCreateProposal:
		return n.governance.CreateProposal(
			txn,
			t.Description,
			t.Recipient,
			t.Amount,
			t.Asset,
		)
	case tx.TypeVote:
		return 0, n.governance.Vote(txn, t.ProposalId, t.Support)
	case tx.TypeCancelProposal:
		return 0, n.governance.CancelProposal(txn, t.ProposalId)
	case tx.TypeExecuteProposal:
		return 0, n.governance.ExecuteProposal(txn, t.ProposalId)
	case tx.TypeDelegate:
		return 0, n.ledger.Delegate(txn, t.Account, t.Amount)
	case tx.TypeUndelegate:
		return 0, n.ledger.Undelegate(txn, t.Amount)
	case tx.TypeTransfer:
		token, err := n.assets.Token(t.Asset)
		if err != nil {
			return 0, err
		}
		return 0, token.TransferFrom(txn, txn.Caller(), t.Account, t.Amount)
	case tx.TypeMint:
		return 0, n.mint(txn, t.Asset, t.Account, t.Amount)
	case tx.TypeBurn:
		return 0, n.ledger.Burn(txn, t.Amount)
	case tx.TypeFundTreasury:
		return 0, n.fundTreasury(txn, t.Asset, t.Amount)
	case tx.TypeEmergencyWithdraw:
		return 0, n.treasury.EmergencyWithdraw(txn, t.Asset, t.Amount, t.Recipient)
	case tx.TypeUpdateConfig:
		return 0, n.governance.UpdateConfiguration(txn, governance.Params{
			ProposalThreshold: t.Params.ProposalThreshold,
			Quorum:            t.Params.Quorum,
			VotingPeriod:      time.Duration(t.Params.VotingPeriod),
		})
	case tx.TypeSetTreasury:
		var custody governance.Custody
		// The node hosts a single treasury
		if t.Account == n.treasury.Address() {
			custody = n.treasury
		}
		return 0, n.governance.SetTreasury(txn, custody)
	case tx.TypeSetGovernance:
		return 0, n.treasury.SetGovernance(txn, t.Account)
	case tx.TypeAddAdministrator:
		return 0, n.roles.AddAdministrator(txn, t.Account)
	case tx.TypeRemoveAdministrator:
		return 0, n.roles.RemoveAdministrator(txn, t.Account)
	case tx.TypeTransferOwnership:
		return 0, n.roles.TransferOwnership(txn, t.Account)
	}
	return 0, fmt.Errorf("%w: %q", tx.ErrUnknownType, t.Type)
}

func (n *Node) mint(
	txn *host.Txn,
	assetId types.Address,
	to types.Address,
	amount uint64,
) error {
	if assetId == n.config.ledgerAddress {
		return n.ledger.Mint(txn, to, amount)
	}
	bank, ok := n.banks[assetId]
	if !ok {
		return asset.ErrInvalidAsset
	}
	return bank.Mint(txn, to, amount)
}

func (n *Node) fundTreasury(
	txn *host.Txn,
	assetId types.Address,
	amount uint64,
) error {
	if assetId.IsZero() {
		return n.treasury.FundNative(txn, amount)
	}
	return n.treasury.FundAsset(txn, assetId, amount)
}
