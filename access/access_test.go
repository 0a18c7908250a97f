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

package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

var (
	owner = types.BytesToAddress([]byte{0x01})
	admin = types.BytesToAddress([]byte{0x02})
	other = types.BytesToAddress([]byte{0x03})
)

func newTxn(caller types.Address) *host.Txn {
	return host.NewTxn(caller, time.Unix(0, 0))
}

func TestRolesOwnerIsAdministrator(t *testing.T) {
	roles := access.NewRoles(owner, admin)
	assert.True(t, roles.IsAdministrator(owner))
	assert.True(t, roles.IsAdministrator(admin))
	assert.False(t, roles.IsAdministrator(other))
	assert.False(t, roles.IsAdministrator(types.ZeroAddress))
}

func TestRolesGrantRevoke(t *testing.T) {
	roles := access.NewRoles(owner)
	txn := newTxn(owner)
	require.NoError(t, txn.Do(func(txn *host.Txn) error {
		return roles.AddAdministrator(txn, admin)
	}))
	assert.True(t, roles.IsAdministrator(admin))
	require.Len(t, txn.Events(), 1)
	assert.Equal(t, event.RoleChangedEventType, txn.Events()[0].Type)

	// Administrators cannot grant roles
	err := newTxn(admin).Do(func(txn *host.Txn) error {
		return roles.AddAdministrator(txn, other)
	})
	assert.ErrorIs(t, err, access.ErrNotOwner)
	assert.ErrorIs(t, err, types.ErrAuthorization)

	require.NoError(t, newTxn(owner).Do(func(txn *host.Txn) error {
		return roles.RemoveAdministrator(txn, admin)
	}))
	assert.False(t, roles.IsAdministrator(admin))

	err = newTxn(owner).Do(func(txn *host.Txn) error {
		return roles.AddAdministrator(txn, types.ZeroAddress)
	})
	assert.ErrorIs(t, err, access.ErrInvalidAccount)
}

func TestRolesTransferOwnershipRollback(t *testing.T) {
	roles := access.NewRoles(owner)
	err := newTxn(owner).Do(func(txn *host.Txn) error {
		if err := roles.TransferOwnership(txn, other); err != nil {
			return err
		}
		assert.Equal(t, other, roles.Owner())
		return types.ErrStateConflict
	})
	require.Error(t, err)
	assert.Equal(t, owner, roles.Owner())

	require.NoError(t, newTxn(owner).Do(func(txn *host.Txn) error {
		return roles.TransferOwnership(txn, other)
	}))
	assert.Equal(t, other, roles.Owner())
	assert.False(t, roles.IsAdministrator(owner))
	assert.True(t, roles.IsAdministrator(other))
}

func TestAuthorizerFunc(t *testing.T) {
	var auth access.Authorizer = access.AuthorizerFunc(func(addr types.Address) bool {
		return addr == admin
	})
	assert.True(t, auth.IsAdministrator(admin))
	assert.False(t, auth.IsAdministrator(other))
}
