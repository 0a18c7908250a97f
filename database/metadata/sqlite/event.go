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

const checkpointRowId = 1

// AddEvent stores an event record. It reports false when an event with the
// same sequence was already stored
func (d *MetadataStoreSqlite) AddEvent(
	record *models.EventRecord,
	txn *gorm.DB,
) (bool, error) {
	db := d.resolveDB(txn)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sequence"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetEvents returns up to limit events with a sequence greater than
// afterSeq, in sequence order. An empty eventType matches every type
func (d *MetadataStoreSqlite) GetEvents(
	afterSeq uint64,
	limit int,
	eventType string,
	txn *gorm.DB,
) ([]models.EventRecord, error) {
	var ret []models.EventRecord
	db := d.resolveDB(txn).Where("sequence > ?", afterSeq)
	if eventType != "" {
		db = db.Where("type = ?", eventType)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if result := db.Order("sequence").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetCheckpoint returns the sequence of the last applied event
func (d *MetadataStoreSqlite) GetCheckpoint(txn *gorm.DB) (uint64, error) {
	var tmpCheckpoint models.Checkpoint
	result := d.resolveDB(txn).First(&tmpCheckpoint)
	if result.Error != nil {
		// It's not an error if there's no records found
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return tmpCheckpoint.Sequence, nil
}

func (d *MetadataStoreSqlite) SetCheckpoint(seq uint64, txn *gorm.DB) error {
	tmpCheckpoint := models.Checkpoint{
		ID:       checkpointRowId,
		Sequence: seq,
	}
	result := d.resolveDB(txn).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sequence"}),
	}).Create(&tmpCheckpoint)
	return result.Error
}
