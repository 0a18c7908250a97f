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

// GetAccount retrieves an account for an asset. Returns nil if the address
// has never held the asset
func (d *MetadataStoreSqlite) GetAccount(
	assetId []byte,
	address []byte,
	txn *gorm.DB,
) (*models.Account, error) {
	var account models.Account
	if result := d.resolveDB(txn).Where(
		"asset = ? AND address = ?",
		assetId,
		address,
	).First(&account); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &account, nil
}

// GetAccountsByAddress retrieves the accounts of one address across assets
func (d *MetadataStoreSqlite) GetAccountsByAddress(
	address []byte,
	txn *gorm.DB,
) ([]models.Account, error) {
	var accounts []models.Account
	if result := d.resolveDB(txn).Where(
		"address = ?",
		address,
	).Order("asset").Find(&accounts); result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

// SetAccount creates or updates an account
func (d *MetadataStoreSqlite) SetAccount(
	account *models.Account,
	txn *gorm.DB,
) error {
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "asset"},
			{Name: "address"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"balance",
			"delegate",
			"delegated_amount",
			"delegated_power",
		}),
	}
	return d.resolveDB(txn).Clauses(onConflict).Create(account).Error
}

// GetTreasuryBalance returns the custody balance of an asset. Unknown
// assets have a zero balance
func (d *MetadataStoreSqlite) GetTreasuryBalance(
	assetId []byte,
	txn *gorm.DB,
) (uint64, error) {
	var balance models.TreasuryBalance
	if result := d.resolveDB(txn).Where(
		"asset = ?",
		assetId,
	).First(&balance); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return balance.Balance, nil
}

func (d *MetadataStoreSqlite) SetTreasuryBalance(
	assetId []byte,
	amount uint64,
	txn *gorm.DB,
) error {
	balance := models.TreasuryBalance{
		Asset:   assetId,
		Balance: amount,
	}
	return d.resolveDB(txn).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance"}),
	}).Create(&balance).Error
}
