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
	"github.com/blinklabs-io/gavel/asset"
	"github.com/blinklabs-io/gavel/types"
)

var (
	ErrUnauthorized = types.NewError(
		types.KindAuthorization,
		"Unauthorized",
		"caller is not authorized",
	)
	ErrAlreadyApproved = types.NewError(
		types.KindStateConflict,
		"AlreadyApproved",
		"proposal already approved",
	)
	ErrNotApproved = types.NewError(
		types.KindStateConflict,
		"NotApproved",
		"proposal not approved",
	)
	ErrAlreadyExecuted = types.NewError(
		types.KindStateConflict,
		"AlreadyExecuted",
		"proposal already executed",
	)
	ErrInvalidGovernance = types.NewError(
		types.KindInvalidInput,
		"InvalidGovernance",
		"governance must not be the null address",
	)
	ErrInsufficientBalance = types.NewError(
		types.KindInsufficientResource,
		"InsufficientBalance",
		"insufficient treasury balance",
	)
)

// Input errors shared with the asset layer
var (
	ErrInvalidRecipient = asset.ErrInvalidRecipient
	ErrInvalidAmount    = asset.ErrInvalidAmount
	ErrInvalidAsset     = asset.ErrInvalidAsset
)
