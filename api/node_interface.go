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

package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/blinklabs-io/gavel/tx"
	"github.com/blinklabs-io/gavel/types"
)

// ApiNode is the interface that the API server uses to query the node and
// submit transactions. This decouples the HTTP server from the concrete Node
// struct and enables testing with mock implementations.
type ApiNode interface {
	// GovernanceParams returns the parameters applied to new proposals.
	GovernanceParams() (ParamsInfo, error)

	// Proposal returns a single proposal with its derived state.
	Proposal(proposalId uint64) (ProposalInfo, error)

	// Proposals returns all proposals in id order.
	Proposals() ([]ProposalInfo, error)

	// VoteInfo returns the vote of one voter on a proposal.
	VoteInfo(proposalId uint64, voter types.Address) (VoteInfo, error)

	// Account returns balance and delegation state of an address.
	Account(addr types.Address) (AccountInfo, error)

	// TreasuryProposal returns the custody flags of a proposal.
	TreasuryProposal(proposalId uint64) (TreasuryProposalInfo, error)

	// TreasuryBalance returns the custody balance of an asset.
	TreasuryBalance(assetId types.Address) (uint64, error)

	// Events returns indexed events after the given sequence.
	Events(afterSeq uint64, limit int, eventType string) ([]EventInfo, error)

	// Submit executes a transaction.
	Submit(ctx context.Context, t tx.Tx) (tx.Receipt, error)
}

type ParamsInfo struct {
	ProposalThreshold uint64
	Quorum            uint64
	VotingPeriod      time.Duration
	Treasury          types.Address
	ProposalCount     uint64
}

type ProposalInfo struct {
	Id           uint64
	Proposer     types.Address
	Description  string
	Recipient    types.Address
	Amount       uint64
	Asset        types.Address
	ForVotes     uint64
	AgainstVotes uint64
	StartTime    time.Time
	EndTime      time.Time
	Quorum       uint64
	Executed     bool
	Canceled     bool
	State        string
}

type VoteInfo struct {
	HasVoted bool
	Support  bool
	Weight   uint64
}

type AccountInfo struct {
	Address         types.Address
	Balance         uint64
	VotingPower     uint64
	Delegate        types.Address
	DelegatedAmount uint64
	DelegatedPower  uint64
	// Balances of every other registered asset, by asset id
	Assets map[types.Address]uint64
}

type TreasuryProposalInfo struct {
	ProposalId uint64
	Approved   bool
	Executed   bool
}

type EventInfo struct {
	Sequence  uint64
	Type      string
	Timestamp time.Time
	Data      json.RawMessage
}
