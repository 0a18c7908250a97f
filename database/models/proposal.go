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

package models

import "time"

// Proposal is the indexed view of a governance proposal. Approved and Spent
// mirror the custody state for the same proposal id.
type Proposal struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement:false"`
	Proposer     []byte    `gorm:"index;size:20;not null"`
	Description  string    `gorm:"not null"`
	Recipient    []byte    `gorm:"size:20;not null"`
	Asset        []byte    `gorm:"size:20;not null"`
	Amount       uint64    `gorm:"not null"`
	ForVotes     uint64    `gorm:"not null"`
	AgainstVotes uint64    `gorm:"not null"`
	Quorum       uint64    `gorm:"not null"`
	StartTime    time.Time `gorm:"not null"`
	EndTime      time.Time `gorm:"index;not null"`
	Executed     bool      `gorm:"index;not null"`
	Canceled     bool      `gorm:"not null"`
	Approved     bool      `gorm:"not null"`
	Spent        bool      `gorm:"not null"`
	CanceledBy   []byte    `gorm:"size:20"`
	AddedSeq     uint64    `gorm:"index;not null"`
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}

// Vote is a single recorded ballot
type Vote struct {
	ID         uint   `gorm:"primarykey"`
	ProposalID uint64 `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:1;not null"`
	Voter      []byte `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:2;size:20;not null"`
	Support    bool   `gorm:"not null"`
	Weight     uint64 `gorm:"not null"`
	AddedSeq   uint64 `gorm:"index;not null"`
}

// TableName returns the table name
func (Vote) TableName() string {
	return "vote"
}
