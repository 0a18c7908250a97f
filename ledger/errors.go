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

import "github.com/blinklabs-io/gavel/types"

var (
	ErrInvalidTarget = types.NewError(
		types.KindInvalidInput,
		"InvalidTarget",
		"delegate must not be the null address or the caller",
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
	ErrInsufficientBalance = types.NewError(
		types.KindInsufficientResource,
		"InsufficientBalance",
		"insufficient balance",
	)
	ErrAlreadyDelegated = types.NewError(
		types.KindStateConflict,
		"AlreadyDelegated",
		"voting power is already delegated to another account",
	)
	ErrNotDelegated = types.NewError(
		types.KindStateConflict,
		"NotDelegated",
		"no active delegation",
	)
	ErrInsufficientDelegatedPower = types.NewError(
		types.KindInsufficientResource,
		"InsufficientDelegatedPower",
		"insufficient delegated voting power",
	)
	ErrUnauthorizedTransfer = types.NewError(
		types.KindAuthorization,
		"UnauthorizedTransfer",
		"caller may only move its own balance",
	)
)
