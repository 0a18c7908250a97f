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

package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type indexerMetrics struct {
	processedTotal prometheus.Counter
	failedTotal    prometheus.Counter
}

func (m *indexerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.processedTotal = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_indexer_events_processed_total",
			Help: "total number of events applied to the projections",
		},
	)
	m.failedTotal = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_indexer_events_failed_total",
			Help: "total number of events that could not be indexed",
		},
	)
}

func (m *indexerMetrics) processed() {
	if m.processedTotal != nil {
		m.processedTotal.Inc()
	}
}

func (m *indexerMetrics) failed() {
	if m.failedTotal != nil {
		m.failedTotal.Inc()
	}
}
