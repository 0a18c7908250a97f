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

import (
	"time"

	"github.com/blinklabs-io/gavel/types"
)

type ProposalState string

const (
	ProposalStatePending   ProposalState = "pending"
	ProposalStateActive    ProposalState = "active"
	ProposalStateCanceled  ProposalState = "canceled"
	ProposalStateDefeated  ProposalState = "defeated"
	ProposalStateSucceeded ProposalState = "succeeded"
	ProposalStateExecuted  ProposalState = "executed"
)

// Params are the tunable governance parameters. Proposals snapshot the
// values in effect when they are created.
type Params struct {
	ProposalThreshold uint64        `json:"proposalThreshold" yaml:"proposalThreshold"`
	Quorum            uint64        `json:"quorum"            yaml:"quorum"`
	VotingPeriod      time.Duration `json:"votingPeriod"      yaml:"votingPeriod"`
}

type Proposal struct {
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
	// Quorum in effect when the proposal was created
	Quorum   uint64
	Executed bool
	Canceled bool
	votes    map[types.Address]VoteInfo
}

type VoteInfo struct {
	HasVoted bool
	Support  bool
	Weight   uint64
}

// clone returns a copy without the voter table
func (p *Proposal) clone() Proposal {
	ret := *p
	ret.votes = nil
	return ret
}

// State derives the lifecycle state of the proposal at the given time
func (p *Proposal) State(now time.Time) ProposalState {
	switch {
	case p.Canceled:
		return ProposalStateCanceled
	case p.Executed:
		return ProposalStateExecuted
	case !now.After(p.StartTime):
		return ProposalStatePending
	case now.Before(p.EndTime):
		return ProposalStateActive
	case !p.passed():
		return ProposalStateDefeated
	default:
		return ProposalStateSucceeded
	}
}

func (p *Proposal) passed() bool {
	return p.quorumReached() && p.ForVotes > p.AgainstVotes
}

func (p *Proposal) quorumReached() bool {
	total, err := types.AddAmount(p.ForVotes, p.AgainstVotes)
	if err != nil {
		// A total beyond uint64 exceeds any quorum
		return true
	}
	return total >= p.Quorum
}
