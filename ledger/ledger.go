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

// Package ledger implements the voting-weight ledger: balances of the
// governance asset and a single-level delegation relation. Voting power is
// the balance itself, so delegation moves balance from delegator to delegate.
package ledger

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

type LedgerConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Authorizer   access.Authorizer
	// Address identifies the governance asset
	Address types.Address
}

type Ledger struct {
	config         LedgerConfig
	metrics        ledgerMetrics
	balances       map[types.Address]uint64
	delegates      map[types.Address]types.Address
	delegatedPower map[types.Address]uint64
	// Outstanding amount each delegator has delegated to its delegate
	delegatedAmount map[types.Address]uint64
	totalSupply     uint64
}

func NewLedger(cfg LedgerConfig) *Ledger {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "ledger")
	l := &Ledger{
		config:          cfg,
		balances:        make(map[types.Address]uint64),
		delegates:       make(map[types.Address]types.Address),
		delegatedPower:  make(map[types.Address]uint64),
		delegatedAmount: make(map[types.Address]uint64),
	}
	if cfg.PromRegistry != nil {
		l.metrics.init(cfg.PromRegistry)
	}
	return l
}

// Address returns the asset identifier of the governance asset
func (l *Ledger) Address() types.Address {
	return l.config.Address
}

// VotingPower returns the current balance of the account, whether held
// directly or received via delegation
func (l *Ledger) VotingPower(account types.Address) uint64 {
	return l.balances[account]
}

func (l *Ledger) BalanceOf(account types.Address) uint64 {
	return l.balances[account]
}

func (l *Ledger) TotalSupply() uint64 {
	return l.totalSupply
}

// Accounts returns every account with a non-zero balance
func (l *Ledger) Accounts() []types.Address {
	ret := make([]types.Address, 0, len(l.balances))
	for addr, balance := range l.balances {
		if balance > 0 {
			ret = append(ret, addr)
		}
	}
	return ret
}

// Transfer moves amount from the caller to the recipient
func (l *Ledger) Transfer(txn *host.Txn, to types.Address, amount uint64) error {
	return l.transfer(txn, txn.Caller(), to, amount)
}

// TransferFrom implements asset.Token so that the governance asset can be
// held in treasury custody. Only the caller's own balance can be moved.
func (l *Ledger) TransferFrom(
	txn *host.Txn,
	from types.Address,
	to types.Address,
	amount uint64,
) error {
	if txn.Caller() != from {
		return ErrUnauthorizedTransfer
	}
	return l.transfer(txn, from, to, amount)
}

func (l *Ledger) transfer(
	txn *host.Txn,
	from types.Address,
	to types.Address,
	amount uint64,
) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.move(txn, from, to, amount)
	txn.Emit(
		event.TransferEventType,
		event.TransferEvent{
			Asset:       l.config.Address,
			From:        from,
			To:          to,
			Amount:      amount,
			FromBalance: l.balances[from],
			ToBalance:   l.balances[to],
		},
	)
	return nil
}

// move updates both balances. Callers have already checked that from holds
// at least amount, and the sum of balances never exceeds the total supply.
func (l *Ledger) move(
	txn *host.Txn,
	from types.Address,
	to types.Address,
	amount uint64,
) {
	host.SetMapValue(txn, l.balances, from, l.balances[from]-amount)
	host.SetMapValue(txn, l.balances, to, l.balances[to]+amount)
}

// Mint creates new governance asset. Only administrators may mint
func (l *Ledger) Mint(txn *host.Txn, to types.Address, amount uint64) error {
	if l.config.Authorizer == nil ||
		!l.config.Authorizer.IsAdministrator(txn.Caller()) {
		return access.ErrNotAdministrator
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	newSupply, err := types.AddAmount(l.totalSupply, amount)
	if err != nil {
		return err
	}
	host.SetValue(txn, &l.totalSupply, newSupply)
	host.SetMapValue(txn, l.balances, to, l.balances[to]+amount)
	l.metrics.setSupply(txn, l.totalSupply)
	txn.Emit(
		event.TransferEventType,
		event.TransferEvent{
			Asset:     l.config.Address,
			To:        to,
			Amount:    amount,
			ToBalance: l.balances[to],
		},
	)
	l.config.Logger.Debug(
		"minted governance asset",
		"to", to.String(),
		"amount", amount,
	)
	return nil
}

// Burn destroys amount of the caller's own balance
func (l *Ledger) Burn(txn *host.Txn, amount uint64) error {
	from := txn.Caller()
	if amount == 0 {
		return ErrInvalidAmount
	}
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	host.SetMapValue(txn, l.balances, from, l.balances[from]-amount)
	host.SetValue(txn, &l.totalSupply, l.totalSupply-amount)
	l.metrics.setSupply(txn, l.totalSupply)
	txn.Emit(
		event.TransferEventType,
		event.TransferEvent{
			Asset:       l.config.Address,
			From:        from,
			Amount:      amount,
			FromBalance: l.balances[from],
		},
	)
	return nil
}
