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

// Package indexer projects committed events into the metadata store
package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/blinklabs-io/gavel/database/metadata/sqlite"
	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/types"
)

const queueSize = 256

var ErrIndexerStopped = errors.New("indexer stopped")

type IndexerConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
	Store        *sqlite.MetadataStoreSqlite
	// GovernanceToken is the asset whose accounts carry delegation state
	GovernanceToken types.Address
}

// Indexer receives every event from the bus in publish order and applies it
// to the projections on a single worker goroutine
type Indexer struct {
	config      IndexerConfig
	metrics     indexerMetrics
	eventCh     chan event.Event
	subId       event.EventSubscriberId
	workerWg    sync.WaitGroup
	lastSeq     atomic.Uint64
	mu          sync.RWMutex
	stopped     bool
	stopOnce    sync.Once
	initialized bool
}

func NewIndexer(cfg IndexerConfig) (*Indexer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "indexer")
	if cfg.EventBus == nil {
		return nil, errors.New("indexer: no event bus configured")
	}
	if cfg.Store == nil {
		return nil, errors.New("indexer: no metadata store configured")
	}
	i := &Indexer{
		config:  cfg,
		eventCh: make(chan event.Event, queueSize),
	}
	if cfg.PromRegistry != nil {
		i.metrics.init(cfg.PromRegistry)
	}
	return i, nil
}

// Start subscribes to all event types and starts the worker
func (i *Indexer) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.initialized {
		return errors.New("indexer already started")
	}
	i.initialized = true
	i.subId = i.config.EventBus.RegisterSubscriber(i, event.AllEventTypes...)
	i.workerWg.Add(1)
	go i.worker()
	return nil
}

// Stop unsubscribes from the bus, applies any queued events and waits for
// the worker to exit
func (i *Indexer) Stop() {
	i.mu.RLock()
	subId := i.subId
	i.mu.RUnlock()
	if subId != 0 {
		i.config.EventBus.Unsubscribe(subId)
	}
	i.Close()
	i.workerWg.Wait()
}

// LastSequence returns the sequence of the last event the worker handled
func (i *Indexer) LastSequence() uint64 {
	return i.lastSeq.Load()
}

// Deliver queues an event for the worker. It blocks while the queue is full
func (i *Indexer) Deliver(evt event.Event) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.stopped {
		return ErrIndexerStopped
	}
	i.eventCh <- evt
	return nil
}

// Close stops accepting events. The bus calls it on Unsubscribe and again
// from Stop, so repeat calls are ignored
func (i *Indexer) Close() {
	i.stopOnce.Do(func() {
		i.mu.Lock()
		i.stopped = true
		close(i.eventCh)
		i.mu.Unlock()
	})
}

func (i *Indexer) worker() {
	defer i.workerWg.Done()
	for evt := range i.eventCh {
		if err := i.apply(evt); err != nil {
			i.metrics.failed()
			i.config.Logger.Error(
				"failed to index event",
				"type", evt.Type,
				"sequence", evt.Sequence,
				"error", err,
			)
		} else {
			i.metrics.processed()
		}
		i.lastSeq.Store(evt.Sequence)
	}
}

func (i *Indexer) apply(evt event.Event) error {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	store := i.config.Store
	return store.Transaction(func(txn *gorm.DB) error {
		added, err := store.AddEvent(&models.EventRecord{
			Sequence:  evt.Sequence,
			Type:      string(evt.Type),
			Timestamp: evt.Timestamp,
			Data:      data,
		}, txn)
		if err != nil {
			return err
		}
		// Events replayed after a restart were already projected
		if !added {
			return nil
		}
		if err := i.project(evt, txn); err != nil {
			return err
		}
		return store.SetCheckpoint(evt.Sequence, txn)
	})
}
