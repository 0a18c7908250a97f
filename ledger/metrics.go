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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/gavel/host"
)

type ledgerMetrics struct {
	totalSupply      prometheus.Gauge
	delegationsTotal prometheus.Counter
	supply           uint64
}

func (m *ledgerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.totalSupply = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "gavel_ledger_total_supply",
		Help: "total supply of the governance asset",
	})
	m.delegationsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gavel_ledger_delegations_total",
		Help: "total number of delegations",
	})
}

// setSupply updates the supply gauge and restores it if the call fails
func (m *ledgerMetrics) setSupply(txn *host.Txn, supply uint64) {
	if m.totalSupply == nil {
		return
	}
	txn.OnRollback(func() {
		m.totalSupply.Set(float64(m.supply))
	})
	host.SetValue(txn, &m.supply, supply)
	m.totalSupply.Set(float64(supply))
}

func (m *ledgerMetrics) delegated(txn *host.Txn) {
	if m.delegationsTotal == nil {
		return
	}
	// Counters cannot go down, so count on commit only
	txn.OnCommit(m.delegationsTotal.Inc)
}
