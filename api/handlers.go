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
	"errors"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/gavel/internal/version"
	"github.com/blinklabs-io/gavel/tx"
	"github.com/blinklabs-io/gavel/types"
)

// maxRequestBodySize limits submitted transaction documents
const maxRequestBodySize = 64 * 1024

func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	code string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Code:       code,
		Message:    message,
	})
}

// statusForKind maps an error kind to the HTTP status reported to clients
func statusForKind(kind types.ErrorKind) int {
	switch kind {
	case types.KindInvalidInput:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindStateConflict:
		return http.StatusConflict
	case types.KindAuthorization:
		return http.StatusForbidden
	case types.KindInsufficientResource:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeCallError reports a failed node call. Errors without a kind are
// logged and reported as internal errors
func (a *Api) writeCallError(
	w http.ResponseWriter,
	msg string,
	err error,
) {
	status := statusForKind(types.KindOf(err))
	if status == http.StatusInternalServerError {
		a.logger.Error(msg, "error", err)
		writeError(w, status, "", msg)
		return
	}
	writeError(w, status, types.CodeOf(err), err.Error())
}

var errInvalidPathValue = types.NewError(
	types.KindInvalidInput,
	"InvalidPathValue",
	"invalid path value",
)

func pathUint(r *http.Request, name string) (uint64, error) {
	val, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, errors.Join(errInvalidPathValue, err)
	}
	return val, nil
}

func pathAddress(r *http.Request, name string) (types.Address, error) {
	addr, err := types.ParseAddress(r.PathValue(name))
	if err != nil {
		return types.Address{}, errors.Join(errInvalidPathValue, err)
	}
	return addr, nil
}

func amountString(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

// handleRoot handles GET / and returns API metadata.
func (a *Api) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "gavel",
		Version: version.GetVersionString(),
	})
}

// handleHealth handles GET /health.
func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if _, err := a.node.GovernanceParams(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (a *Api) handleParams(w http.ResponseWriter, _ *http.Request) {
	params, err := a.node.GovernanceParams()
	if err != nil {
		a.writeCallError(w, "failed to retrieve governance parameters", err)
		return
	}
	writeJSON(w, http.StatusOK, ParamsResponse{
		ProposalThreshold: params.ProposalThreshold,
		Quorum:            params.Quorum,
		VotingPeriod:      params.VotingPeriod.String(),
		Treasury:          params.Treasury.String(),
		ProposalCount:     params.ProposalCount,
	})
}

func proposalResponse(p ProposalInfo) ProposalResponse {
	return ProposalResponse{
		Id:           p.Id,
		Proposer:     p.Proposer.String(),
		Description:  p.Description,
		Recipient:    p.Recipient.String(),
		Amount:       amountString(p.Amount),
		Asset:        p.Asset.String(),
		ForVotes:     amountString(p.ForVotes),
		AgainstVotes: amountString(p.AgainstVotes),
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Quorum:       amountString(p.Quorum),
		Executed:     p.Executed,
		Canceled:     p.Canceled,
		State:        p.State,
	}
}

// handleProposals handles GET /api/v0/proposals with count/page/order
// pagination.
func (a *Api) handleProposals(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		a.writeCallError(w, "invalid pagination", err)
		return
	}
	proposals, err := a.node.Proposals()
	if err != nil {
		a.writeCallError(w, "failed to retrieve proposals", err)
		return
	}
	SetPaginationHeaders(w, len(proposals), params)
	page := Paginate(proposals, params)
	ret := make([]ProposalResponse, 0, len(page))
	for _, p := range page {
		ret = append(ret, proposalResponse(p))
	}
	writeJSON(w, http.StatusOK, ret)
}

func (a *Api) handleProposal(w http.ResponseWriter, r *http.Request) {
	proposalId, err := pathUint(r, "id")
	if err != nil {
		a.writeCallError(w, "invalid proposal id", err)
		return
	}
	proposal, err := a.node.Proposal(proposalId)
	if err != nil {
		a.writeCallError(w, "failed to retrieve proposal", err)
		return
	}
	writeJSON(w, http.StatusOK, proposalResponse(proposal))
}

func (a *Api) handleVote(w http.ResponseWriter, r *http.Request) {
	proposalId, err := pathUint(r, "id")
	if err != nil {
		a.writeCallError(w, "invalid proposal id", err)
		return
	}
	voter, err := pathAddress(r, "voter")
	if err != nil {
		a.writeCallError(w, "invalid voter address", err)
		return
	}
	vote, err := a.node.VoteInfo(proposalId, voter)
	if err != nil {
		a.writeCallError(w, "failed to retrieve vote", err)
		return
	}
	writeJSON(w, http.StatusOK, VoteResponse{
		ProposalId: proposalId,
		Voter:      voter.String(),
		HasVoted:   vote.HasVoted,
		Support:    vote.Support,
		Weight:     amountString(vote.Weight),
	})
}

func (a *Api) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		a.writeCallError(w, "invalid address", err)
		return
	}
	account, err := a.node.Account(addr)
	if err != nil {
		a.writeCallError(w, "failed to retrieve account", err)
		return
	}
	resp := AccountResponse{
		Address:         account.Address.String(),
		Balance:         amountString(account.Balance),
		VotingPower:     amountString(account.VotingPower),
		DelegatedAmount: amountString(account.DelegatedAmount),
		DelegatedPower:  amountString(account.DelegatedPower),
		Assets:          make(map[string]string, len(account.Assets)),
	}
	if !account.Delegate.IsZero() {
		delegate := account.Delegate.String()
		resp.Delegate = &delegate
	}
	for assetId, balance := range account.Assets {
		resp.Assets[assetId.String()] = amountString(balance)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *Api) handleTreasuryProposal(w http.ResponseWriter, r *http.Request) {
	proposalId, err := pathUint(r, "id")
	if err != nil {
		a.writeCallError(w, "invalid proposal id", err)
		return
	}
	info, err := a.node.TreasuryProposal(proposalId)
	if err != nil {
		a.writeCallError(w, "failed to retrieve treasury proposal", err)
		return
	}
	writeJSON(w, http.StatusOK, TreasuryProposalResponse{
		ProposalId: info.ProposalId,
		Approved:   info.Approved,
		Executed:   info.Executed,
	})
}

func (a *Api) handleTreasuryBalance(w http.ResponseWriter, r *http.Request) {
	assetId, err := pathAddress(r, "asset")
	if err != nil {
		a.writeCallError(w, "invalid asset id", err)
		return
	}
	balance, err := a.node.TreasuryBalance(assetId)
	if err != nil {
		a.writeCallError(w, "failed to retrieve treasury balance", err)
		return
	}
	writeJSON(w, http.StatusOK, TreasuryBalanceResponse{
		Asset:   assetId.String(),
		Balance: amountString(balance),
	})
}

// handleEvents handles GET /api/v0/events. Clients page through the feed
// with the after cursor and may filter by type
func (a *Api) handleEvents(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		a.writeCallError(w, "invalid pagination", err)
		return
	}
	events, err := a.node.Events(
		params.After,
		params.Count,
		r.URL.Query().Get("type"),
	)
	if err != nil {
		a.writeCallError(w, "failed to retrieve events", err)
		return
	}
	ret := make([]EventResponse, 0, len(events))
	for _, evt := range events {
		ret = append(ret, EventResponse{
			Sequence:  evt.Sequence,
			Type:      evt.Type,
			Timestamp: evt.Timestamp,
			Data:      evt.Data,
		})
	}
	writeJSON(w, http.StatusOK, ret)
}

var errInvalidBody = types.NewError(
	types.KindInvalidInput,
	"InvalidBody",
	"request body is not a valid transaction",
)

var ErrSubmissionDisabled = types.NewError(
	types.KindAuthorization,
	"SubmissionDisabled",
	"transaction submission is disabled",
)

// handleSubmit handles POST /api/v0/tx with a JSON transaction document
func (a *Api) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !a.config.EnableSubmit {
		a.writeCallError(w, "transaction submission is disabled", ErrSubmissionDisabled)
		return
	}
	var t tx.Tx
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		a.writeCallError(w, "invalid transaction", errors.Join(errInvalidBody, err))
		return
	}
	receipt, err := a.node.Submit(r.Context(), t)
	if err != nil {
		a.writeCallError(w, "failed to submit transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{
		Sequence:   receipt.Sequence,
		Timestamp:  receipt.Timestamp,
		ProposalId: receipt.ProposalId,
		Events:     receipt.Events,
	})
}
