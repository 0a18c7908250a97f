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

package governance

import "github.com/blinklabs-io/gavel/types"

var (
	ErrEmptyDescription = types.NewError(
		types.KindInvalidInput,
		"EmptyDescription",
		"description must not be empty",
	)
	ErrInvalidRecipient = types.NewError(
		types.KindInvalidInput,
		"InvalidRecipient",
		"recipient must not be the null address",
	)
	ErrInvalidAmount = types.NewError(
		types.KindInvalidInput,
		"InvalidAmount",
		"amount must be greater than zero",
	)
	ErrInvalidConfiguration = types.NewError(
		types.KindInvalidInput,
		"InvalidConfiguration",
		"voting period must be greater than zero",
	)
	ErrMissingLedger = types.NewError(
		types.KindInvalidInput,
		"MissingLedger",
		"a voting power source is required",
	)
	ErrInvalidTreasury = types.NewError(
		types.KindInvalidInput,
		"InvalidTreasury",
		"treasury must be set",
	)
	ErrInsufficientVotingPower = types.NewError(
		types.KindInsufficientResource,
		"InsufficientVotingPower",
		"voting power below proposal threshold",
	)
	ErrProposalNotFound = types.NewError(
		types.KindNotFound,
		"ProposalNotFound",
		"proposal not found",
	)
	ErrVotingNotStarted = types.NewError(
		types.KindStateConflict,
		"VotingNotStarted",
		"voting has not started",
	)
	ErrVotingEnded = types.NewError(
		types.KindStateConflict,
		"VotingEnded",
		"voting has ended",
	)
	ErrVotingNotEnded = types.NewError(
		types.KindStateConflict,
		"VotingNotEnded",
		"voting has not ended",
	)
	ErrAlreadyVoted = types.NewError(
		types.KindStateConflict,
		"AlreadyVoted",
		"caller has already voted",
	)
	ErrAlreadyExecuted = types.NewError(
		types.KindStateConflict,
		"AlreadyExecuted",
		"proposal already executed",
	)
	ErrAlreadyCanceled = types.NewError(
		types.KindStateConflict,
		"AlreadyCanceled",
		"proposal already canceled",
	)
	ErrProposalCanceled = types.NewError(
		types.KindStateConflict,
		"ProposalCanceled",
		"proposal was canceled",
	)
	ErrNoVotingPower = types.NewError(
		types.KindInsufficientResource,
		"NoVotingPower",
		"caller has no voting power",
	)
	ErrNotAuthorized = types.NewError(
		types.KindAuthorization,
		"NotAuthorized",
		"caller is not the proposer or an administrator",
	)
	ErrQuorumNotReached = types.NewError(
		types.KindInsufficientResource,
		"QuorumNotReached",
		"quorum not reached",
	)
	ErrInsufficientSupport = types.NewError(
		types.KindInsufficientResource,
		"InsufficientSupport",
		"votes for do not exceed votes against",
	)
)
