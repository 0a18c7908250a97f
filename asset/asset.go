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

// Package asset models the fungible value held by accounts and the treasury
package asset

import (
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

var (
	ErrInvalidAsset = types.NewError(
		types.KindInvalidInput,
		"InvalidAsset",
		"unknown asset",
	)
	ErrInsufficientBalance = types.NewError(
		types.KindInsufficientResource,
		"InsufficientBalance",
		"insufficient balance",
	)
	ErrInvalidAmount = types.NewError(
		types.KindInvalidInput,
		"InvalidAmount",
		"amount must be greater than zero",
	)
	ErrInvalidRecipient = types.NewError(
		types.KindInvalidInput,
		"InvalidRecipient",
		"recipient must not be the null address",
	)
	ErrUnauthorizedTransfer = types.NewError(
		types.KindAuthorization,
		"UnauthorizedTransfer",
		"caller may only move its own balance",
	)
)

// Token is a fungible asset. TransferFrom moves value out of the caller's own
// balance only, so from must equal the caller of the current frame.
type Token interface {
	BalanceOf(types.Address) uint64
	TransferFrom(txn *host.Txn, from types.Address, to types.Address, amount uint64) error
}

// Registry resolves asset identifiers to tokens. The native asset is
// identified by types.NativeAsset.
type Registry struct {
	tokens map[types.Address]Token
}

func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[types.Address]Token),
	}
}

func (r *Registry) Register(id types.Address, token Token) {
	r.tokens[id] = token
}

func (r *Registry) Token(id types.Address) (Token, error) {
	token, ok := r.tokens[id]
	if !ok {
		return nil, ErrInvalidAsset
	}
	return token, nil
}

// Assets returns the registered asset identifiers
func (r *Registry) Assets() []types.Address {
	ret := make([]types.Address, 0, len(r.tokens))
	for id := range r.tokens {
		ret = append(ret, id)
	}
	return ret
}
