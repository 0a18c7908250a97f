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

package sqlite

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/gavel/database/models"
)

// GetProposal retrieves a proposal by id. Returns nil if it does not exist
func (d *MetadataStoreSqlite) GetProposal(
	proposalId uint64,
	txn *gorm.DB,
) (*models.Proposal, error) {
	var proposal models.Proposal
	if result := d.resolveDB(txn).First(&proposal, proposalId); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposals returns up to limit proposals with an id greater than afterId
func (d *MetadataStoreSqlite) GetProposals(
	afterId uint64,
	limit int,
	txn *gorm.DB,
) ([]models.Proposal, error) {
	var proposals []models.Proposal
	db := d.resolveDB(txn).Where("id > ?", afterId).Order("id")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if result := db.Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// SetProposal creates or updates a proposal
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn *gorm.DB,
) error {
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		// added_seq keeps the sequence of the creating event
		DoUpdates: clause.AssignmentColumns([]string{
			"for_votes",
			"against_votes",
			"executed",
			"canceled",
			"approved",
			"spent",
			"canceled_by",
		}),
	}
	return d.resolveDB(txn).Clauses(onConflict).Create(proposal).Error
}

// GetVote retrieves the vote of one voter on a proposal. Returns nil if
// the voter has not voted
func (d *MetadataStoreSqlite) GetVote(
	proposalId uint64,
	voter []byte,
	txn *gorm.DB,
) (*models.Vote, error) {
	var vote models.Vote
	if result := d.resolveDB(txn).Where(
		"proposal_id = ? AND voter = ?",
		proposalId,
		voter,
	).First(&vote); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &vote, nil
}

// GetVotes retrieves all votes for a proposal in the order they were cast
func (d *MetadataStoreSqlite) GetVotes(
	proposalId uint64,
	txn *gorm.DB,
) ([]models.Vote, error) {
	var votes []models.Vote
	if result := d.resolveDB(txn).Where(
		"proposal_id = ?",
		proposalId,
	).Order("added_seq").Find(&votes); result.Error != nil {
		return nil, result.Error
	}
	return votes, nil
}

// SetVote creates or updates a vote
func (d *MetadataStoreSqlite) SetVote(
	vote *models.Vote,
	txn *gorm.DB,
) error {
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "voter"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"support",
			"weight",
			"added_seq",
		}),
	}
	return d.resolveDB(txn).Clauses(onConflict).Create(vote).Error
}

// UpdateProposal updates selected columns of a proposal. Proposals that
// were never indexed are ignored
func (d *MetadataStoreSqlite) UpdateProposal(
	proposalId uint64,
	columns map[string]any,
	txn *gorm.DB,
) error {
	return d.resolveDB(txn).
		Model(&models.Proposal{}).
		Where("id = ?", proposalId).
		Updates(columns).Error
}
