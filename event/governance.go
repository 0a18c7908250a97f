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

package event

import (
	"time"

	"github.com/blinklabs-io/gavel/types"
)

const (
	ProposalCreatedEventType     EventType = "governance.proposal.created"
	VoteCastEventType            EventType = "governance.vote.cast"
	ProposalCanceledEventType    EventType = "governance.proposal.canceled"
	ProposalExecutedEventType    EventType = "governance.proposal.executed"
	ConfigUpdatedEventType       EventType = "governance.config.updated"
	TreasuryChangedEventType     EventType = "governance.treasury.changed"
	ProposalApprovedEventType    EventType = "treasury.proposal.approved"
	FundsSpentEventType          EventType = "treasury.funds.spent"
	TreasuryFundedEventType      EventType = "treasury.funded"
	EmergencyWithdrawalEventType EventType = "treasury.emergency.withdrawal"
	TransferEventType            EventType = "ledger.transfer"
	DelegatedEventType           EventType = "ledger.delegated"
	UndelegatedEventType         EventType = "ledger.undelegated"
	RoleChangedEventType         EventType = "access.role.changed"
	GovernanceSetEventType       EventType = "treasury.governance.set"
)

// Role names carried by RoleChangedEvent
const (
	RoleAdministrator = "administrator"
	RoleOwner         = "owner"
)

// AllEventTypes lists every event type emitted by the engine, in no
// particular order
var AllEventTypes = []EventType{
	ProposalCreatedEventType,
	VoteCastEventType,
	ProposalCanceledEventType,
	ProposalExecutedEventType,
	ConfigUpdatedEventType,
	TreasuryChangedEventType,
	ProposalApprovedEventType,
	FundsSpentEventType,
	TreasuryFundedEventType,
	EmergencyWithdrawalEventType,
	TransferEventType,
	DelegatedEventType,
	UndelegatedEventType,
	RoleChangedEventType,
	GovernanceSetEventType,
}

type ProposalCreatedEvent struct {
	ProposalId  uint64
	Proposer    types.Address
	Description string
	Recipient   types.Address
	Amount      uint64
	Asset       types.Address
	StartTime   time.Time
	EndTime     time.Time
	Quorum      uint64
}

// VoteCastEvent carries the running tallies after the vote was counted
type VoteCastEvent struct {
	ProposalId   uint64
	Voter        types.Address
	Support      bool
	Weight       uint64
	ForVotes     uint64
	AgainstVotes uint64
}

type ProposalCanceledEvent struct {
	ProposalId uint64
	CanceledBy types.Address
}

type ProposalExecutedEvent struct {
	ProposalId   uint64
	Recipient    types.Address
	Amount       uint64
	Asset        types.Address
	ForVotes     uint64
	AgainstVotes uint64
}

type ConfigUpdatedEvent struct {
	ProposalThreshold uint64
	Quorum            uint64
	VotingPeriod      time.Duration
}

type TreasuryChangedEvent struct {
	Previous types.Address
	Treasury types.Address
}

type GovernanceSetEvent struct {
	Previous   types.Address
	Governance types.Address
}

type ProposalApprovedEvent struct {
	ProposalId uint64
}

// Treasury events report the pool balance of the affected asset after the
// operation
type FundsSpentEvent struct {
	ProposalId uint64
	Recipient  types.Address
	Amount     uint64
	Asset      types.Address
	Balance    uint64
}

type TreasuryFundedEvent struct {
	Funder  types.Address
	Amount  uint64
	Asset   types.Address
	Balance uint64
}

type EmergencyWithdrawalEvent struct {
	Recipient types.Address
	Amount    uint64
	Asset     types.Address
	Balance   uint64
}

// TransferEvent reports a movement of value. Minting is reported as a
// transfer from the null address and burning as a transfer to it.
type TransferEvent struct {
	Asset       types.Address
	From        types.Address
	To          types.Address
	Amount      uint64
	FromBalance uint64
	ToBalance   uint64
}

// DelegatedEvent and UndelegatedEvent report balances and delegation state
// after the operation. Active is false once the delegator has no outstanding
// delegated amount.
type DelegatedEvent struct {
	Delegator        types.Address
	Delegate         types.Address
	Amount           uint64
	DelegatorBalance uint64
	DelegateBalance  uint64
	DelegatedPower   uint64
	Active           bool
}

type UndelegatedEvent DelegatedEvent

type RoleChangedEvent struct {
	Role    string
	Account types.Address
	Granted bool
}
