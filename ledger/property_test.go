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

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/ledger"
	"github.com/blinklabs-io/gavel/types"
)

var propertyAccounts = []types.Address{alice, bob, carol, admin}

// checkLedgerInvariants verifies the bookkeeping that must hold after every
// call, successful or not
func checkLedgerInvariants(rt *rapid.T, l *ledger.Ledger) {
	var sum uint64
	received := make(map[types.Address]uint64)
	for _, addr := range propertyAccounts {
		sum += l.BalanceOf(addr)
		require.Equal(rt, l.BalanceOf(addr), l.VotingPower(addr))
		delegate, ok := l.DelegateOf(addr)
		require.Equal(rt, ok, l.HasDelegated(addr))
		require.Equal(rt, ok, l.DelegatedAmount(addr) > 0)
		if ok {
			received[delegate] += l.DelegatedAmount(addr)
		}
	}
	require.Equal(rt, l.TotalSupply(), sum)
	for _, addr := range propertyAccounts {
		require.Equal(rt, received[addr], l.DelegatedPower(addr))
	}
}

func TestLedgerInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := ledger.NewLedger(ledger.LedgerConfig{
			Address:    govAsset,
			Authorizer: access.NewRoles(admin),
		})
		for _, addr := range propertyAccounts {
			amount := rapid.Uint64Range(0, 1000).Draw(rt, "initial_balance")
			if amount == 0 {
				continue
			}
			require.NoError(rt, run(admin, func(txn *host.Txn) error {
				return l.Mint(txn, addr, amount)
			}))
		}
		accountGen := rapid.SampledFrom(propertyAccounts)
		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for range steps {
			caller := accountGen.Draw(rt, "caller")
			target := accountGen.Draw(rt, "target")
			amount := rapid.Uint64Range(0, 600).Draw(rt, "amount")
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				_ = run(caller, func(txn *host.Txn) error {
					return l.Delegate(txn, target, amount)
				})
			case 1:
				_ = run(caller, func(txn *host.Txn) error {
					return l.Undelegate(txn, amount)
				})
			case 2:
				_ = run(caller, func(txn *host.Txn) error {
					return l.Transfer(txn, target, amount)
				})
			case 3:
				_ = run(caller, func(txn *host.Txn) error {
					return l.Burn(txn, amount)
				})
			}
			checkLedgerInvariants(rt, l)
		}
	})
}

func TestDelegationRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := ledger.NewLedger(ledger.LedgerConfig{
			Address:    govAsset,
			Authorizer: access.NewRoles(admin),
		})
		delegatorBalance := rapid.Uint64Range(1, 1_000_000).Draw(rt, "delegator_balance")
		delegateBalance := rapid.Uint64Range(0, 1_000_000).Draw(rt, "delegate_balance")
		amount := rapid.Uint64Range(1, delegatorBalance).Draw(rt, "amount")
		require.NoError(rt, run(admin, func(txn *host.Txn) error {
			if err := l.Mint(txn, alice, delegatorBalance); err != nil {
				return err
			}
			if delegateBalance == 0 {
				return nil
			}
			return l.Mint(txn, bob, delegateBalance)
		}))
		require.NoError(rt, run(alice, func(txn *host.Txn) error {
			return l.Delegate(txn, bob, amount)
		}))
		// Delegator balance plus received delegated weight is preserved
		require.Equal(
			rt,
			delegatorBalance,
			l.BalanceOf(alice)+l.DelegatedPower(bob),
		)
		require.NoError(rt, run(alice, func(txn *host.Txn) error {
			return l.Undelegate(txn, amount)
		}))
		require.Equal(rt, delegatorBalance, l.BalanceOf(alice))
		require.Equal(rt, delegateBalance, l.BalanceOf(bob))
		require.False(rt, l.HasDelegated(alice))
	})
}
