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

package ledger

import (
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

// DelegateOf returns the active delegate of the account
func (l *Ledger) DelegateOf(account types.Address) (types.Address, bool) {
	delegate, ok := l.delegates[account]
	return delegate, ok
}

func (l *Ledger) HasDelegated(account types.Address) bool {
	_, ok := l.delegates[account]
	return ok
}

// DelegatedPower returns the weight currently delegated to the account by
// all of its delegators
func (l *Ledger) DelegatedPower(delegate types.Address) uint64 {
	return l.delegatedPower[delegate]
}

// DelegatedAmount returns the weight the account currently has delegated
// out to its delegate
func (l *Ledger) DelegatedAmount(delegator types.Address) uint64 {
	return l.delegatedAmount[delegator]
}

// Account is a snapshot of one account's balance and delegation state
type Account struct {
	Address         types.Address `json:"address"`
	Balance         uint64        `json:"balance"`
	VotingPower     uint64        `json:"votingPower"`
	Delegate        types.Address `json:"delegate,omitzero"`
	DelegatedAmount uint64        `json:"delegatedAmount"`
	DelegatedPower  uint64        `json:"delegatedPower"`
}

func (l *Ledger) Account(addr types.Address) Account {
	return Account{
		Address:         addr,
		Balance:         l.balances[addr],
		VotingPower:     l.VotingPower(addr),
		Delegate:        l.delegates[addr],
		DelegatedAmount: l.delegatedAmount[addr],
		DelegatedPower:  l.delegatedPower[addr],
	}
}

// Delegate moves amount of the caller's balance to the delegate. A caller
// has at most one delegate: topping up the same delegate accumulates, while
// switching to a different delegate requires undelegating first.
func (l *Ledger) Delegate(
	txn *host.Txn,
	delegate types.Address,
	amount uint64,
) error {
	delegator := txn.Caller()
	if delegate.IsZero() || delegate == delegator {
		return ErrInvalidTarget
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if l.balances[delegator] < amount {
		return ErrInsufficientBalance
	}
	if current, ok := l.delegates[delegator]; ok && current != delegate {
		return ErrAlreadyDelegated
	}
	// Both counters are bounded by the total supply
	l.move(txn, delegator, delegate, amount)
	host.SetMapValue(
		txn,
		l.delegatedPower,
		delegate,
		l.delegatedPower[delegate]+amount,
	)
	host.SetMapValue(
		txn,
		l.delegatedAmount,
		delegator,
		l.delegatedAmount[delegator]+amount,
	)
	host.SetMapValue(txn, l.delegates, delegator, delegate)
	l.metrics.delegated(txn)
	txn.Emit(
		event.DelegatedEventType,
		event.DelegatedEvent{
			Delegator:        delegator,
			Delegate:         delegate,
			Amount:           amount,
			DelegatorBalance: l.balances[delegator],
			DelegateBalance:  l.balances[delegate],
			DelegatedPower:   l.delegatedPower[delegate],
			Active:           true,
		},
	)
	l.config.Logger.Debug(
		"delegated voting power",
		"delegator", delegator.String(),
		"delegate", delegate.String(),
		"amount", amount,
	)
	return nil
}

// Undelegate returns amount from the caller's delegate to the caller. The
// delegation ends once the caller has nothing left delegated.
func (l *Ledger) Undelegate(txn *host.Txn, amount uint64) error {
	delegator := txn.Caller()
	if amount == 0 {
		return ErrInvalidAmount
	}
	delegate, ok := l.delegates[delegator]
	if !ok {
		return ErrNotDelegated
	}
	if l.delegatedPower[delegate] < amount ||
		l.delegatedAmount[delegator] < amount {
		return ErrInsufficientDelegatedPower
	}
	// The delegate may have spent the delegated balance
	if l.balances[delegate] < amount {
		return ErrInsufficientBalance
	}
	l.move(txn, delegate, delegator, amount)
	if remaining := l.delegatedPower[delegate] - amount; remaining > 0 {
		host.SetMapValue(txn, l.delegatedPower, delegate, remaining)
	} else {
		host.DeleteMapValue(txn, l.delegatedPower, delegate)
	}
	remaining := l.delegatedAmount[delegator] - amount
	if remaining > 0 {
		host.SetMapValue(txn, l.delegatedAmount, delegator, remaining)
	} else {
		host.DeleteMapValue(txn, l.delegatedAmount, delegator)
		host.DeleteMapValue(txn, l.delegates, delegator)
	}
	txn.Emit(
		event.UndelegatedEventType,
		event.UndelegatedEvent{
			Delegator:        delegator,
			Delegate:         delegate,
			Amount:           amount,
			DelegatorBalance: l.balances[delegator],
			DelegateBalance:  l.balances[delegate],
			DelegatedPower:   l.delegatedPower[delegate],
			Active:           remaining > 0,
		},
	)
	l.config.Logger.Debug(
		"undelegated voting power",
		"delegator", delegator.String(),
		"delegate", delegate.String(),
		"amount", amount,
	)
	return nil
}
