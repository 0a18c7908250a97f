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

// Package treasury holds pooled funds in custody and releases them only for
// proposals approved by the registered governance engine, at most once each
package treasury

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/asset"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

type TreasuryConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Assets       *asset.Registry
	Authorizer   access.Authorizer
	// Address is the custody account that holds the pooled funds
	Address types.Address
	// Governance is the only caller allowed to approve and spend
	Governance types.Address
}

type Treasury struct {
	config     TreasuryConfig
	metrics    treasuryMetrics
	approved   map[uint64]bool
	executed   map[uint64]bool
	governance types.Address
	spendGuard host.Guard
	withdraw   host.Guard
	fundGuard  host.Guard
}

func NewTreasury(cfg TreasuryConfig) *Treasury {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "treasury")
	if cfg.Assets == nil {
		cfg.Assets = asset.NewRegistry()
	}
	t := &Treasury{
		config:     cfg,
		approved:   make(map[uint64]bool),
		executed:   make(map[uint64]bool),
		governance: cfg.Governance,
	}
	if cfg.PromRegistry != nil {
		t.metrics.init(cfg.PromRegistry)
	}
	return t
}

// Address returns the custody account
func (t *Treasury) Address() types.Address {
	return t.config.Address
}

func (t *Treasury) Governance() types.Address {
	return t.governance
}

// IsApproved reports whether the proposal has been approved for spending
func (t *Treasury) IsApproved(proposalId uint64) bool {
	return t.approved[proposalId]
}

// IsExecuted reports whether funds have been released for the proposal
func (t *Treasury) IsExecuted(proposalId uint64) bool {
	return t.executed[proposalId]
}

// Balance returns the pooled balance of the asset
func (t *Treasury) Balance(assetId types.Address) (uint64, error) {
	token, err := t.config.Assets.Token(assetId)
	if err != nil {
		return 0, err
	}
	return token.BalanceOf(t.config.Address), nil
}

// SetGovernance registers the governance engine. Only administrators may
// change it
func (t *Treasury) SetGovernance(txn *host.Txn, governance types.Address) error {
	if !t.isAdministrator(txn.Caller()) {
		return ErrUnauthorized
	}
	if governance.IsZero() {
		return ErrInvalidGovernance
	}
	previous := t.governance
	host.SetValue(txn, &t.governance, governance)
	txn.Emit(
		event.GovernanceSetEventType,
		event.GovernanceSetEvent{
			Previous:   previous,
			Governance: governance,
		},
	)
	return nil
}

func (t *Treasury) isAdministrator(addr types.Address) bool {
	return t.config.Authorizer != nil && t.config.Authorizer.IsAdministrator(addr)
}

func (t *Treasury) isGovernance(addr types.Address) bool {
	return !t.governance.IsZero() && addr == t.governance
}
