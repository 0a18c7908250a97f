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

package governance

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/gavel/host"
)

type governanceMetrics struct {
	proposalsCreated  prometheus.Counter
	proposalsCanceled prometheus.Counter
	proposalsExecuted prometheus.Counter
	votesTotal        *prometheus.CounterVec
}

func (m *governanceMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gavel_governance_proposals_created_total",
		Help: "total number of proposals created",
	})
	m.proposalsCanceled = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gavel_governance_proposals_canceled_total",
		Help: "total number of proposals canceled",
	})
	m.proposalsExecuted = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gavel_governance_proposals_executed_total",
		Help: "total number of proposals executed",
	})
	m.votesTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_governance_votes_total",
			Help: "total number of votes cast, by support",
		},
		[]string{"support"},
	)
}

func (m *governanceMetrics) created(txn *host.Txn) {
	if m.proposalsCreated != nil {
		txn.OnCommit(m.proposalsCreated.Inc)
	}
}

func (m *governanceMetrics) canceled(txn *host.Txn) {
	if m.proposalsCanceled != nil {
		txn.OnCommit(m.proposalsCanceled.Inc)
	}
}

func (m *governanceMetrics) executed(txn *host.Txn) {
	if m.proposalsExecuted != nil {
		txn.OnCommit(m.proposalsExecuted.Inc)
	}
}

func (m *governanceMetrics) voted(txn *host.Txn, support bool) {
	if m.votesTotal != nil {
		txn.OnCommit(m.votesTotal.WithLabelValues(strconv.FormatBool(support)).Inc)
	}
}
