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

package gavel

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blinklabs-io/gavel/api"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/types"
)

var _ api.ApiNode = (*Node)(nil)

func proposalInfo(p governance.Proposal, now time.Time) api.ProposalInfo {
	return api.ProposalInfo{
		Id:           p.Id,
		Proposer:     p.Proposer,
		Description:  p.Description,
		Recipient:    p.Recipient,
		Amount:       p.Amount,
		Asset:        p.Asset,
		ForVotes:     p.ForVotes,
		AgainstVotes: p.AgainstVotes,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Quorum:       p.Quorum,
		Executed:     p.Executed,
		Canceled:     p.Canceled,
		State:        string(p.State(now)),
	}
}

func (n *Node) GovernanceParams() (api.ParamsInfo, error) {
	if !n.isStarted() {
		return api.ParamsInfo{}, ErrNodeNotStarted
	}
	var ret api.ParamsInfo
	n.executor.View(func(time.Time) {
		params := n.governance.Params()
		ret = api.ParamsInfo{
			ProposalThreshold: params.ProposalThreshold,
			Quorum:            params.Quorum,
			VotingPeriod:      params.VotingPeriod,
			Treasury:          n.governance.Treasury(),
			ProposalCount:     n.governance.ProposalCount(),
		}
	})
	return ret, nil
}

func (n *Node) Proposal(proposalId uint64) (api.ProposalInfo, error) {
	if !n.isStarted() {
		return api.ProposalInfo{}, ErrNodeNotStarted
	}
	var ret api.ProposalInfo
	var err error
	n.executor.View(func(now time.Time) {
		var p governance.Proposal
		p, err = n.governance.GetProposal(proposalId)
		if err == nil {
			ret = proposalInfo(p, now)
		}
	})
	return ret, err
}

func (n *Node) Proposals() ([]api.ProposalInfo, error) {
	if !n.isStarted() {
		return nil, ErrNodeNotStarted
	}
	var ret []api.ProposalInfo
	n.executor.View(func(now time.Time) {
		proposals := n.governance.ListProposals(0, 0)
		ret = make([]api.ProposalInfo, 0, len(proposals))
		for _, p := range proposals {
			ret = append(ret, proposalInfo(p, now))
		}
	})
	return ret, nil
}

func (n *Node) VoteInfo(
	proposalId uint64,
	voter types.Address,
) (api.VoteInfo, error) {
	if !n.isStarted() {
		return api.VoteInfo{}, ErrNodeNotStarted
	}
	var ret api.VoteInfo
	var err error
	n.executor.View(func(time.Time) {
		var vote governance.VoteInfo
		vote, err = n.governance.GetVoteInfo(proposalId, voter)
		ret = api.VoteInfo{
			HasVoted: vote.HasVoted,
			Support:  vote.Support,
			Weight:   vote.Weight,
		}
	})
	return ret, err
}

// Account returns the governance token state of an address along with its
// balance of every other registered asset
func (n *Node) Account(addr types.Address) (api.AccountInfo, error) {
	if !n.isStarted() {
		return api.AccountInfo{}, ErrNodeNotStarted
	}
	var ret api.AccountInfo
	var err error
	n.executor.View(func(time.Time) {
		account := n.ledger.Account(addr)
		ret = api.AccountInfo{
			Address:         account.Address,
			Balance:         account.Balance,
			VotingPower:     account.VotingPower,
			Delegate:        account.Delegate,
			DelegatedAmount: account.DelegatedAmount,
			DelegatedPower:  account.DelegatedPower,
			Assets:          make(map[types.Address]uint64),
		}
		for _, assetId := range n.assets.Assets() {
			if assetId == n.config.ledgerAddress {
				continue
			}
			token, tokenErr := n.assets.Token(assetId)
			if tokenErr != nil {
				err = tokenErr
				return
			}
			ret.Assets[assetId] = token.BalanceOf(addr)
		}
	})
	return ret, err
}

func (n *Node) TreasuryProposal(
	proposalId uint64,
) (api.TreasuryProposalInfo, error) {
	if !n.isStarted() {
		return api.TreasuryProposalInfo{}, ErrNodeNotStarted
	}
	var ret api.TreasuryProposalInfo
	n.executor.View(func(time.Time) {
		ret = api.TreasuryProposalInfo{
			ProposalId: proposalId,
			Approved:   n.treasury.IsApproved(proposalId),
			Executed:   n.treasury.IsExecuted(proposalId),
		}
	})
	return ret, nil
}

func (n *Node) TreasuryBalance(assetId types.Address) (uint64, error) {
	if !n.isStarted() {
		return 0, ErrNodeNotStarted
	}
	var ret uint64
	var err error
	n.executor.View(func(time.Time) {
		ret, err = n.treasury.Balance(assetId)
	})
	return ret, err
}

// Events reads the indexed event feed from the metadata store. The feed
// lags committed state until the indexer catches up
func (n *Node) Events(
	afterSeq uint64,
	limit int,
	eventType string,
) ([]api.EventInfo, error) {
	if !n.isStarted() {
		return nil, ErrNodeNotStarted
	}
	records, err := n.db.Metadata().GetEvents(afterSeq, limit, eventType, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	ret := make([]api.EventInfo, 0, len(records))
	for _, record := range records {
		ret = append(ret, api.EventInfo{
			Sequence:  record.Sequence,
			Type:      record.Type,
			Timestamp: record.Timestamp,
			Data:      json.RawMessage(record.Data),
		})
	}
	return ret, nil
}
