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

// Package governance implements the proposal lifecycle: creation, weighted
// voting, cancellation and execution through the treasury approval gate
package governance

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

// VotingPowerSource reports the voting weight of an account
type VotingPowerSource interface {
	VotingPower(types.Address) uint64
}

// Custody is the approval gate the engine releases funds through
type Custody interface {
	Address() types.Address
	ApproveProposal(txn *host.Txn, proposalId uint64) error
	SpendFunds(
		txn *host.Txn,
		proposalId uint64,
		recipient types.Address,
		amount uint64,
		assetId types.Address,
	) error
}

type GovernanceConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Ledger       VotingPowerSource
	Treasury     Custody
	Authorizer   access.Authorizer
	Params       Params
	// Address is the identity the engine uses when calling the treasury
	Address types.Address
}

type Governance struct {
	config       GovernanceConfig
	metrics      governanceMetrics
	params       Params
	treasury     Custody
	proposals    map[uint64]*Proposal
	lastId       uint64
	executeGuard host.Guard
}

func NewGovernance(cfg GovernanceConfig) (*Governance, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "governance")
	if cfg.Ledger == nil {
		return nil, ErrMissingLedger
	}
	if cfg.Params.VotingPeriod <= 0 {
		return nil, ErrInvalidConfiguration
	}
	g := &Governance{
		config:    cfg,
		params:    cfg.Params,
		treasury:  cfg.Treasury,
		proposals: make(map[uint64]*Proposal),
	}
	if cfg.PromRegistry != nil {
		g.metrics.init(cfg.PromRegistry)
	}
	return g, nil
}

func (g *Governance) Address() types.Address {
	return g.config.Address
}

// Params returns the parameters that apply to new proposals
func (g *Governance) Params() Params {
	return g.params
}

// Treasury returns the address of the current treasury, if any
func (g *Governance) Treasury() types.Address {
	if g.treasury == nil {
		return types.ZeroAddress
	}
	return g.treasury.Address()
}

func (g *Governance) ProposalCount() uint64 {
	return g.lastId
}

func (g *Governance) GetProposal(proposalId uint64) (Proposal, error) {
	p, ok := g.proposals[proposalId]
	if !ok {
		return Proposal{}, ErrProposalNotFound
	}
	return p.clone(), nil
}

func (g *Governance) GetVoteInfo(
	proposalId uint64,
	voter types.Address,
) (VoteInfo, error) {
	p, ok := g.proposals[proposalId]
	if !ok {
		return VoteInfo{}, ErrProposalNotFound
	}
	return p.votes[voter], nil
}

// ProposalState returns the derived lifecycle state of a proposal
func (g *Governance) ProposalState(
	proposalId uint64,
	now time.Time,
) (ProposalState, error) {
	p, ok := g.proposals[proposalId]
	if !ok {
		return "", ErrProposalNotFound
	}
	return p.State(now), nil
}

// ListProposals returns up to limit proposals in id order, starting after
// the given id
func (g *Governance) ListProposals(afterId uint64, limit int) []Proposal {
	ret := []Proposal{}
	if afterId >= g.lastId {
		return ret
	}
	for id := afterId + 1; id <= g.lastId; id++ {
		if limit > 0 && len(ret) >= limit {
			break
		}
		ret = append(ret, g.proposals[id].clone())
	}
	return ret
}

// UpdateConfiguration replaces the governance parameters. Existing proposals
// keep the deadline and quorum they were created with
func (g *Governance) UpdateConfiguration(txn *host.Txn, params Params) error {
	if !g.isAdministrator(txn.Caller()) {
		return access.ErrNotAdministrator
	}
	if params.VotingPeriod <= 0 {
		return ErrInvalidConfiguration
	}
	host.SetValue(txn, &g.params, params)
	txn.Emit(
		event.ConfigUpdatedEventType,
		event.ConfigUpdatedEvent{
			ProposalThreshold: params.ProposalThreshold,
			Quorum:            params.Quorum,
			VotingPeriod:      params.VotingPeriod,
		},
	)
	g.config.Logger.Info(
		"updated governance configuration",
		"proposal_threshold", params.ProposalThreshold,
		"quorum", params.Quorum,
		"voting_period", params.VotingPeriod.String(),
	)
	return nil
}

// SetTreasury points the engine at a different treasury
func (g *Governance) SetTreasury(txn *host.Txn, treasury Custody) error {
	if !g.isAdministrator(txn.Caller()) {
		return access.ErrNotAdministrator
	}
	if treasury == nil || treasury.Address().IsZero() {
		return ErrInvalidTreasury
	}
	previous := g.Treasury()
	host.SetValue(txn, &g.treasury, treasury)
	txn.Emit(
		event.TreasuryChangedEventType,
		event.TreasuryChangedEvent{
			Previous: previous,
			Treasury: treasury.Address(),
		},
	)
	return nil
}

func (g *Governance) isAdministrator(addr types.Address) bool {
	return g.config.Authorizer != nil && g.config.Authorizer.IsAdministrator(addr)
}
