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
	"encoding/json"
	"time"
)

// RootResponse is returned by GET /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type ParamsResponse struct {
	ProposalThreshold uint64 `json:"proposal_threshold"`
	Quorum            uint64 `json:"quorum"`
	VotingPeriod      string `json:"voting_period"`
	Treasury          string `json:"treasury"`
	ProposalCount     uint64 `json:"proposal_count"`
}

type ProposalResponse struct {
	Id           uint64    `json:"id"`
	Proposer     string    `json:"proposer"`
	Description  string    `json:"description"`
	Recipient    string    `json:"recipient"`
	Amount       string    `json:"amount"`
	Asset        string    `json:"asset"`
	ForVotes     string    `json:"for_votes"`
	AgainstVotes string    `json:"against_votes"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Quorum       string    `json:"quorum"`
	Executed     bool      `json:"executed"`
	Canceled     bool      `json:"canceled"`
	State        string    `json:"state"`
}

type VoteResponse struct {
	ProposalId uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	HasVoted   bool   `json:"has_voted"`
	Support    bool   `json:"support"`
	Weight     string `json:"weight"`
}

type AccountResponse struct {
	Address         string            `json:"address"`
	Balance         string            `json:"balance"`
	VotingPower     string            `json:"voting_power"`
	Delegate        *string           `json:"delegate"`
	DelegatedAmount string            `json:"delegated_amount"`
	DelegatedPower  string            `json:"delegated_power"`
	Assets          map[string]string `json:"assets"`
}

type TreasuryProposalResponse struct {
	ProposalId uint64 `json:"proposal_id"`
	Approved   bool   `json:"approved"`
	Executed   bool   `json:"executed"`
}

type TreasuryBalanceResponse struct {
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

type EventResponse struct {
	Sequence  uint64          `json:"sequence"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type ReceiptResponse struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	ProposalId uint64    `json:"proposal_id,omitempty"`
	Events     []string  `json:"events"`
}

// ErrorResponse is returned for every failed request. Code carries the
// machine-readable error code of a rejected call when there is one
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}
