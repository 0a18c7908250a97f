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

// Package scenario replays scripted governance sessions against a fresh
// in-memory node driven by a manual clock
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/gavel"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/tx"
	"github.com/blinklabs-io/gavel/types"
)

// ExpectOk is the expectation of a step that must succeed
const ExpectOk = "ok"

// Start is the clock time step offsets are measured from
var Start = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

var ErrStepOrder = errors.New("steps must be ordered by time")

type Scenario struct {
	Name           string          `yaml:"name"`
	Owner          types.Address   `yaml:"owner"`
	Administrators []types.Address `yaml:"administrators"`
	Params         *tx.Params      `yaml:"params"`
	Genesis        gavel.Genesis   `yaml:"genesis"`
	Steps          []Step          `yaml:"steps"`
	Final          Final           `yaml:"final"`
}

// Step is one transaction submitted at an offset from Start. Expect is
// either ok or the error code the call must fail with
type Step struct {
	At     tx.Duration `yaml:"at"`
	Tx     tx.Tx       `yaml:",inline"`
	Expect string      `yaml:"expect"`
}

// Final lists state that must hold once every step has run
type Final struct {
	Balances  []BalanceCheck           `yaml:"balances"`
	Treasury  map[types.Address]uint64 `yaml:"treasury"`
	Proposals map[uint64]string        `yaml:"proposals"`
}

type BalanceCheck struct {
	Account types.Address `yaml:"account"`
	Asset   types.Address `yaml:"asset"`
	Amount  uint64        `yaml:"amount"`
}

type StepResult struct {
	Index   int
	At      time.Duration
	Type    tx.Type
	Expect  string
	Outcome string
	Passed  bool
}

type Result struct {
	Name     string
	Steps    []StepResult
	Failures []string
}

func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

func Load(path string) (*Scenario, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}
	return Parse(buf)
}

func Parse(data []byte) (*Scenario, error) {
	var ret Scenario
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("error parsing scenario: %w", err)
	}
	var last tx.Duration
	for i := range ret.Steps {
		step := &ret.Steps[i]
		if step.At < last {
			return nil, fmt.Errorf("%w: step %d", ErrStepOrder, i+1)
		}
		last = step.At
		if step.Expect == "" {
			step.Expect = ExpectOk
		}
	}
	return &ret, nil
}

// Run executes the scenario on a fresh node. The returned error reports
// problems running the scenario itself. Unmet expectations are listed in
// the result
func Run(
	ctx context.Context,
	s *Scenario,
	logger *slog.Logger,
) (Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With("component", "scenario")
	params := gavel.DefaultGovernanceParams
	if s.Params != nil {
		params = governance.Params{
			ProposalThreshold: s.Params.ProposalThreshold,
			Quorum:            s.Params.Quorum,
			VotingPeriod:      time.Duration(s.Params.VotingPeriod),
		}
	}
	clock := host.NewManualClock(Start)
	n, err := gavel.New(gavel.NewConfig(
		gavel.WithLogger(logger),
		gavel.WithClock(clock),
		gavel.WithOwner(s.Owner),
		gavel.WithAdministrators(s.Administrators...),
		gavel.WithGovernanceParams(params),
		gavel.WithGenesis(s.Genesis),
	))
	if err != nil {
		return Result{}, err
	}
	if err := n.Start(ctx); err != nil {
		return Result{}, errors.Join(err, n.Stop())
	}
	defer n.Stop() //nolint:errcheck

	ret := Result{Name: s.Name}
	for i, step := range s.Steps {
		at := time.Duration(step.At)
		if err := clock.Set(Start.Add(at)); err != nil {
			return ret, fmt.Errorf("step %d: %w", i+1, err)
		}
		outcome := ExpectOk
		if _, err := n.Submit(ctx, step.Tx); err != nil {
			outcome = types.CodeOf(err)
			if outcome == "" {
				outcome = err.Error()
			}
		}
		result := StepResult{
			Index:   i + 1,
			At:      at,
			Type:    step.Tx.Type,
			Expect:  step.Expect,
			Outcome: outcome,
			Passed:  outcome == step.Expect,
		}
		ret.Steps = append(ret.Steps, result)
		if !result.Passed {
			ret.Failures = append(
				ret.Failures,
				fmt.Sprintf(
					"step %d (%s): expected %s, got %s",
					result.Index,
					result.Type,
					result.Expect,
					result.Outcome,
				),
			)
		}
		logger.Debug(
			"scenario step",
			"step", result.Index,
			"type", string(result.Type),
			"outcome", outcome,
			"passed", result.Passed,
		)
	}
	failures, err := checkFinal(n, s.Final)
	if err != nil {
		return ret, err
	}
	ret.Failures = append(ret.Failures, failures...)
	return ret, nil
}

func checkFinal(n *gavel.Node, final Final) ([]string, error) {
	var ret []string
	for _, check := range final.Balances {
		account, err := n.Account(check.Account)
		if err != nil {
			return nil, err
		}
		balance, ok := account.Assets[check.Asset]
		if !ok {
			// The governance token is not listed among the assets
			balance = account.Balance
		}
		if balance != check.Amount {
			ret = append(ret, fmt.Sprintf(
				"balance of %s in asset %s: expected %d, got %d",
				check.Account,
				check.Asset,
				check.Amount,
				balance,
			))
		}
	}
	for assetId, amount := range final.Treasury {
		balance, err := n.TreasuryBalance(assetId)
		if err != nil {
			return nil, err
		}
		if balance != amount {
			ret = append(ret, fmt.Sprintf(
				"treasury balance of asset %s: expected %d, got %d",
				assetId,
				amount,
				balance,
			))
		}
	}
	for proposalId, state := range final.Proposals {
		proposal, err := n.Proposal(proposalId)
		if err != nil {
			return nil, err
		}
		if proposal.State != state {
			ret = append(ret, fmt.Sprintf(
				"state of proposal %d: expected %s, got %s",
				proposalId,
				state,
				proposal.State,
			))
		}
	}
	return ret, nil
}
