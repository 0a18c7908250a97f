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

package asset

import (
	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

// TransferHook is invoked after a Bank transfer has updated balances, in the
// frame of the recipient. A failing hook aborts the transfer.
type TransferHook func(txn *host.Txn, from types.Address, to types.Address, amount uint64) error

// Bank is a simple in-memory token used for the native asset and for
// additional configured assets
type Bank struct {
	authorizer access.Authorizer
	balances   map[types.Address]uint64
	hook       TransferHook
	id         types.Address
	supply     uint64
}

func NewBank(id types.Address, authorizer access.Authorizer) *Bank {
	return &Bank{
		id:         id,
		authorizer: authorizer,
		balances:   make(map[types.Address]uint64),
	}
}

// SetTransferHook installs a hook called on every successful transfer
func (b *Bank) SetTransferHook(hook TransferHook) {
	b.hook = hook
}

func (b *Bank) BalanceOf(addr types.Address) uint64 {
	return b.balances[addr]
}

func (b *Bank) TotalSupply() uint64 {
	return b.supply
}

// Mint creates new value. Only administrators may mint
func (b *Bank) Mint(txn *host.Txn, to types.Address, amount uint64) error {
	if b.authorizer == nil || !b.authorizer.IsAdministrator(txn.Caller()) {
		return access.ErrNotAdministrator
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	newSupply, err := types.AddAmount(b.supply, amount)
	if err != nil {
		return err
	}
	host.SetValue(txn, &b.supply, newSupply)
	host.SetMapValue(txn, b.balances, to, b.balances[to]+amount)
	txn.Emit(
		event.TransferEventType,
		event.TransferEvent{
			Asset:     b.id,
			To:        to,
			Amount:    amount,
			ToBalance: b.balances[to],
		},
	)
	return nil
}

func (b *Bank) TransferFrom(
	txn *host.Txn,
	from types.Address,
	to types.Address,
	amount uint64,
) error {
	if txn.Caller() != from {
		return ErrUnauthorizedTransfer
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if b.balances[from] < amount {
		return ErrInsufficientBalance
	}
	host.SetMapValue(txn, b.balances, from, b.balances[from]-amount)
	host.SetMapValue(txn, b.balances, to, b.balances[to]+amount)
	txn.Emit(
		event.TransferEventType,
		event.TransferEvent{
			Asset:       b.id,
			From:        from,
			To:          to,
			Amount:      amount,
			FromBalance: b.balances[from],
			ToBalance:   b.balances[to],
		},
	)
	if b.hook != nil {
		return txn.Call(to, func(txn *host.Txn) error {
			return b.hook(txn, from, to, amount)
		})
	}
	return nil
}
