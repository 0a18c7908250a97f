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

package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/types"
)

const tracerName = "github.com/blinklabs-io/gavel/host"

type ExecutorConfig struct {
	Clock        Clock
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// Executor serializes top-level calls. Each call runs in its own Txn and
// either commits fully or leaves no trace. Committed events are numbered and
// published in commit order.
type Executor struct {
	clock    Clock
	eventBus *event.EventBus
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *executorMetrics
	last     time.Time
	eventSeq uint64
	mu       sync.Mutex
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &Executor{
		clock:    cfg.Clock,
		eventBus: cfg.EventBus,
		logger:   cfg.Logger.With("component", "executor"),
		tracer:   otel.Tracer(tracerName),
	}
	if cfg.PromRegistry != nil {
		e.initMetrics(cfg.PromRegistry)
	}
	return e
}

// Run executes fn as a top-level call by caller at the current clock time
func (e *Executor) Run(
	ctx context.Context,
	op string,
	caller types.Address,
	fn func(*Txn) error,
) ([]event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	// Time observed by calls never goes backwards
	if now.Before(e.last) {
		now = e.last
	}
	return e.run(ctx, op, caller, now, fn)
}

// RunAt executes fn as a top-level call at the given time. It is used to
// replay recorded calls and fails if the time precedes an earlier call.
func (e *Executor) RunAt(
	ctx context.Context,
	op string,
	caller types.Address,
	at time.Time,
	fn func(*Txn) error,
) ([]event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if at.Before(e.last) {
		return nil, fmt.Errorf(
			"%w: %s is before %s",
			ErrClockRegression,
			at.Format(time.RFC3339Nano),
			e.last.Format(time.RFC3339Nano),
		)
	}
	return e.run(ctx, op, caller, at, fn)
}

// View runs a read-only function while no call is in progress. The time
// passed is the time a call starting now would observe.
func (e *Executor) View(fn func(now time.Time)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	if now.Before(e.last) {
		now = e.last
	}
	fn(now)
}

// LastEventSequence returns the sequence number of the most recently
// published event
func (e *Executor) LastEventSequence() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eventSeq
}

func (e *Executor) run(
	ctx context.Context,
	op string,
	caller types.Address,
	now time.Time,
	fn func(*Txn) error,
) ([]event.Event, error) {
	_, span := e.tracer.Start(
		ctx,
		"gavel."+op,
		trace.WithAttributes(
			attribute.String("gavel.caller", caller.String()),
			attribute.String("gavel.op", op),
		),
	)
	defer span.End()
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	start := time.Now()
	txn := NewTxn(caller, now)
	err := txn.Do(fn)
	if e.metrics != nil {
		e.metrics.callDuration.WithLabelValues(op).
			Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if e.metrics != nil {
			e.metrics.callsTotal.WithLabelValues(op, types.KindOf(err).String()).
				Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("gavel.error_code", types.CodeOf(err)))
		e.logger.Debug(
			"call rejected",
			"op", op,
			"caller", caller.String(),
			"error", err,
		)
		return nil, err
	}
	e.last = now
	events := txn.Events()
	for i := range events {
		e.eventSeq++
		events[i].Sequence = e.eventSeq
	}
	if e.metrics != nil {
		e.metrics.callsTotal.WithLabelValues(op, "ok").Inc()
	}
	span.SetAttributes(attribute.Int("gavel.events", len(events)))
	if e.eventBus != nil {
		for _, evt := range events {
			e.eventBus.Publish(evt)
		}
	}
	return events, nil
}
