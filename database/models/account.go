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

// Account tracks the balance of one holder for one asset. Delegation fields
// are only populated for the governance token.
type Account struct {
	ID              uint   `gorm:"primarykey"`
	Asset           []byte `gorm:"uniqueIndex:idx_account_asset_address,priority:1;size:20;not null"`
	Address         []byte `gorm:"uniqueIndex:idx_account_asset_address,priority:2;size:20;not null"`
	Balance         uint64 `gorm:"not null"`
	Delegate        []byte `gorm:"size:20"`
	DelegatedAmount uint64 `gorm:"not null"`
	DelegatedPower  uint64 `gorm:"not null"`
}

// TableName returns the table name
func (Account) TableName() string {
	return "account"
}

// TreasuryBalance is the custody pool balance of one asset
type TreasuryBalance struct {
	ID      uint   `gorm:"primarykey"`
	Asset   []byte `gorm:"uniqueIndex;size:20;not null"`
	Balance uint64 `gorm:"not null"`
}

// TableName returns the table name
func (TreasuryBalance) TableName() string {
	return "treasury_balance"
}
