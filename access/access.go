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

// Package access holds the administrator and ownership roles that gate
// privileged operations
package access

import (
	"sync"

	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

var (
	ErrNotOwner = types.NewError(
		types.KindAuthorization,
		"NotOwner",
		"caller is not the owner",
	)
	ErrNotAdministrator = types.NewError(
		types.KindAuthorization,
		"NotAdministrator",
		"caller is not an administrator",
	)
	ErrInvalidAccount = types.NewError(
		types.KindInvalidInput,
		"InvalidAccount",
		"account must not be the null address",
	)
)

// Authorizer decides whether an account holds the administrator role
type Authorizer interface {
	IsAdministrator(types.Address) bool
}

// AuthorizerFunc adapts a function to the Authorizer interface
type AuthorizerFunc func(types.Address) bool

func (f AuthorizerFunc) IsAdministrator(addr types.Address) bool {
	return f(addr)
}

// Roles is the role registry. The owner is always an administrator and is
// the only account that can grant or revoke roles.
type Roles struct {
	admins map[types.Address]bool
	owner  types.Address
	mu     sync.RWMutex
}

func NewRoles(owner types.Address, admins ...types.Address) *Roles {
	r := &Roles{
		owner:  owner,
		admins: make(map[types.Address]bool),
	}
	for _, admin := range admins {
		r.admins[admin] = true
	}
	return r
}

func (r *Roles) Owner() types.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

func (r *Roles) IsAdministrator(addr types.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if addr.IsZero() {
		return false
	}
	return addr == r.owner || r.admins[addr]
}

// Administrators returns the explicitly granted administrators
func (r *Roles) Administrators() []types.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]types.Address, 0, len(r.admins))
	for addr := range r.admins {
		ret = append(ret, addr)
	}
	return ret
}

func (r *Roles) AddAdministrator(txn *host.Txn, account types.Address) error {
	return r.setAdministrator(txn, account, true)
}

func (r *Roles) RemoveAdministrator(txn *host.Txn, account types.Address) error {
	return r.setAdministrator(txn, account, false)
}

func (r *Roles) setAdministrator(
	txn *host.Txn,
	account types.Address,
	granted bool,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.Caller() != r.owner {
		return ErrNotOwner
	}
	if account.IsZero() {
		return ErrInvalidAccount
	}
	if r.admins[account] == granted {
		return nil
	}
	if granted {
		host.SetMapValue(txn, r.admins, account, true)
	} else {
		host.DeleteMapValue(txn, r.admins, account)
	}
	txn.Emit(
		event.RoleChangedEventType,
		event.RoleChangedEvent{
			Role:    event.RoleAdministrator,
			Account: account,
			Granted: granted,
		},
	)
	return nil
}

func (r *Roles) TransferOwnership(txn *host.Txn, newOwner types.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.Caller() != r.owner {
		return ErrNotOwner
	}
	if newOwner.IsZero() {
		return ErrInvalidAccount
	}
	host.SetValue(txn, &r.owner, newOwner)
	txn.Emit(
		event.RoleChangedEventType,
		event.RoleChangedEvent{
			Role:    event.RoleOwner,
			Account: newOwner,
			Granted: true,
		},
	)
	return nil
}
