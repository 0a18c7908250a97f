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

// Package tx defines the external transactions accepted by a node and the
// records kept for them in the transaction log
package tx

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blinklabs-io/gavel/types"
)

type Type string

const (
	TypeCreateProposal      Type = "create_proposal"
	TypeVote                Type = "vote"
	TypeCancelProposal      Type = "cancel_proposal"
	TypeExecuteProposal     Type = "execute_proposal"
	TypeDelegate            Type = "delegate"
	TypeUndelegate          Type = "undelegate"
	TypeTransfer            Type = "transfer"
	TypeMint                Type = "mint"
	TypeBurn                Type = "burn"
	TypeFundTreasury        Type = "fund_treasury"
	TypeEmergencyWithdraw   Type = "emergency_withdraw"
	TypeUpdateConfig        Type = "update_config"
	TypeSetTreasury         Type = "set_treasury"
	TypeSetGovernance       Type = "set_governance"
	TypeAddAdministrator    Type = "add_administrator"
	TypeRemoveAdministrator Type = "remove_administrator"
	TypeTransferOwnership   Type = "transfer_ownership"
)

var knownTypes = map[Type]bool{
	TypeCreateProposal:      true,
	TypeVote:                true,
	TypeCancelProposal:      true,
	TypeExecuteProposal:     true,
	TypeDelegate:            true,
	TypeUndelegate:          true,
	TypeTransfer:            true,
	TypeMint:                true,
	TypeBurn:                true,
	TypeFundTreasury:        true,
	TypeEmergencyWithdraw:   true,
	TypeUpdateConfig:        true,
	TypeSetTreasury:         true,
	TypeSetGovernance:       true,
	TypeAddAdministrator:    true,
	TypeRemoveAdministrator: true,
	TypeTransferOwnership:   true,
}

var (
	ErrUnknownType = types.NewError(
		types.KindInvalidInput,
		"UnknownTransaction",
		"unknown transaction type",
	)
	ErrMissingParams = types.NewError(
		types.KindInvalidInput,
		"MissingParams",
		"transaction requires governance parameters",
	)
)

// Duration is a time.Duration with a text form such as "72h"
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(data []byte) error {
	tmp, err := time.ParseDuration(string(data))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(tmp)
	return nil
}

// Params carries a governance configuration update
type Params struct {
	ProposalThreshold uint64   `json:"proposalThreshold" yaml:"proposalThreshold"`
	Quorum            uint64   `json:"quorum"            yaml:"quorum"`
	VotingPeriod      Duration `json:"votingPeriod"      yaml:"votingPeriod"`
}

// Tx is one external call. Which fields are meaningful depends on Type:
// Account is the counterparty of the call (delegate, transfer or mint
// target, role holder, or the new treasury or governance address)
type Tx struct {
	Type        Type          `json:"type"                  yaml:"type"`
	Caller      types.Address `json:"caller"                yaml:"caller"`
	ProposalId  uint64        `json:"proposalId,omitempty"  yaml:"proposalId,omitempty"`
	Support     bool          `json:"support,omitempty"     yaml:"support,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Recipient   types.Address `json:"recipient,omitzero"    yaml:"recipient,omitempty"`
	Account     types.Address `json:"account,omitzero"      yaml:"account,omitempty"`
	Asset       types.Address `json:"asset,omitzero"        yaml:"asset,omitempty"`
	Amount      uint64        `json:"amount,omitempty"      yaml:"amount,omitempty"`
	Params      *Params       `json:"params,omitempty"      yaml:"params,omitempty"`
}

// Validate checks that the transaction is well formed. Domain checks are
// left to the component that executes it
func (t *Tx) Validate() error {
	if !knownTypes[t.Type] {
		return fmt.Errorf("%w: %q", ErrUnknownType, t.Type)
	}
	if t.Type == TypeUpdateConfig && t.Params == nil {
		return ErrMissingParams
	}
	return nil
}

// Receipt is the outcome of a submitted transaction
type Receipt struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	ProposalId uint64    `json:"proposalId,omitempty"`
	Events     []string  `json:"events"`
}

// Record is the transaction log entry for a committed transaction
type Record struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Tx        Tx        `json:"tx"`
}

func (r *Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRecord(data []byte) (Record, error) {
	var ret Record
	if err := json.Unmarshal(data, &ret); err != nil {
		return Record{}, fmt.Errorf("decode transaction record: %w", err)
	}
	return ret, nil
}
