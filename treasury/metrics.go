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

package treasury

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

type treasuryMetrics struct {
	approvalsTotal prometheus.Counter
	spentTotal     *prometheus.CounterVec
	fundedTotal    *prometheus.CounterVec
}

func (m *treasuryMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.approvalsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gavel_treasury_approvals_total",
		Help: "total number of approved proposals",
	})
	m.spentTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_treasury_spent_total",
			Help: "total amount released from the treasury, by asset",
		},
		[]string{"asset"},
	)
	m.fundedTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_treasury_funded_total",
			Help: "total amount deposited into the treasury, by asset",
		},
		[]string{"asset"},
	)
}

func (m *treasuryMetrics) approved(txn *host.Txn) {
	if m.approvalsTotal == nil {
		return
	}
	txn.OnCommit(m.approvalsTotal.Inc)
}

func (m *treasuryMetrics) spent(txn *host.Txn, assetId types.Address, amount uint64) {
	if m.spentTotal == nil {
		return
	}
	txn.OnCommit(func() {
		m.spentTotal.WithLabelValues(assetId.String()).Add(float64(amount))
	})
}

func (m *treasuryMetrics) funded(txn *host.Txn, assetId types.Address, amount uint64) {
	if m.fundedTotal == nil {
		return
	}
	txn.OnCommit(func() {
		m.fundedTotal.WithLabelValues(assetId.String()).Add(float64(amount))
	})
}
