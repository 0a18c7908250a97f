// Copyright 2025 Blink Labs Software
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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/gavel/access"
	"github.com/blinklabs-io/gavel/api"
	"github.com/blinklabs-io/gavel/asset"
	"github.com/blinklabs-io/gavel/database"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/indexer"
	"github.com/blinklabs-io/gavel/ledger"
	"github.com/blinklabs-io/gavel/treasury"
	"github.com/blinklabs-io/gavel/tx"
	"github.com/blinklabs-io/gavel/types"
)

var ErrNodeNotStarted = errors.New("node not started")

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	executor      *host.Executor
	roles         *access.Roles
	assets        *asset.Registry
	banks         map[types.Address]*asset.Bank
	ledger        *ledger.Ledger
	treasury      *treasury.Treasury
	governance    *governance.Governance
	indexer       *indexer.Indexer
	api           *api.Api
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	startOnce     sync.Once
	shutdownOnce  sync.Once
	started       bool
	mu            sync.RWMutex
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// EventBus returns the bus committed events are published on
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// Run starts the node and blocks until the context is done or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return errors.Join(err, n.Stop())
	}
	select {
	case <-ctx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

// Start opens the database, restores state and starts the indexer and API
func (n *Node) Start(ctx context.Context) error {
	err := errors.New("node already started")
	n.startOnce.Do(func() {
		err = n.start(ctx)
	})
	return err
}

func (n *Node) start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(
		n.config.logger,
		n.config.promRegistry,
		n.config.dataDir,
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	if err := n.buildComponents(); err != nil {
		return err
	}
	// Start indexer before restoring so that replayed events reach the projections
	idx, err := indexer.NewIndexer(indexer.IndexerConfig{
		Logger:          n.config.logger,
		PromRegistry:    n.config.promRegistry,
		EventBus:        n.eventBus,
		Store:           n.db.Metadata(),
		GovernanceToken: n.config.ledgerAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	n.indexer = idx
	if err := n.indexer.Start(); err != nil {
		return fmt.Errorf("failed to start indexer: %w", err)
	}
	if err := n.restore(ctx); err != nil {
		return err
	}
	n.mu.Lock()
	n.started = true
	n.mu.Unlock()
	// Configure REST API
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.ApiConfig{
				ListenAddress: n.config.apiListenAddress,
				EnableSubmit:  n.config.apiSubmit,
			},
			n,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API: %w", err)
		}
	}
	return nil
}

func (n *Node) buildComponents() error {
	cfg := n.config
	n.roles = access.NewRoles(cfg.owner, cfg.administrators...)
	n.ledger = ledger.NewLedger(ledger.LedgerConfig{
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		Authorizer:   n.roles,
		Address:      cfg.ledgerAddress,
	})
	n.assets = asset.NewRegistry()
	n.assets.Register(cfg.ledgerAddress, n.ledger)
	n.banks = make(map[types.Address]*asset.Bank)
	for _, assetId := range cfg.genesis.assetIds(cfg.ledgerAddress) {
		bank := asset.NewBank(assetId, n.roles)
		n.banks[assetId] = bank
		n.assets.Register(assetId, bank)
	}
	n.treasury = treasury.NewTreasury(treasury.TreasuryConfig{
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		Assets:       n.assets,
		Authorizer:   n.roles,
		Address:      cfg.treasuryAddress,
		Governance:   cfg.engineAddress,
	})
	gov, err := governance.NewGovernance(governance.GovernanceConfig{
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		Ledger:       n.ledger,
		Treasury:     n.treasury,
		Authorizer:   n.roles,
		Params:       cfg.params,
		Address:      cfg.engineAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to create governance engine: %w", err)
	}
	n.governance = gov
	n.executor = host.NewExecutor(host.ExecutorConfig{
		Clock:        cfg.clock,
		EventBus:     n.eventBus,
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
	})
	return nil
}

// restore applies the genesis and replays the transaction log at the
// recorded timestamps
func (n *Node) restore(ctx context.Context) error {
	var records []tx.Record
	err := n.db.Blob().Iterate(func(seq uint64, data []byte) error {
		record, err := tx.DecodeRecord(data)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", seq, err)
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read transaction log: %w", err)
	}
	genesisFn := func(txn *host.Txn) error {
		return n.applyGenesis(txn)
	}
	if len(records) > 0 {
		_, err = n.executor.RunAt(
			ctx,
			"genesis",
			n.config.owner,
			records[0].Timestamp,
			genesisFn,
		)
	} else {
		_, err = n.executor.Run(ctx, "genesis", n.config.owner, genesisFn)
	}
	if err != nil {
		return fmt.Errorf("failed to apply genesis: %w", err)
	}
	for _, record := range records {
		_, err := n.executor.RunAt(
			ctx,
			string(record.Tx.Type),
			record.Tx.Caller,
			record.Timestamp,
			func(txn *host.Txn) error {
				_, err := n.dispatch(txn, record.Tx)
				return err
			},
		)
		if err != nil {
			return fmt.Errorf(
				"failed to replay transaction %d: %w",
				record.Sequence,
				err,
			)
		}
	}
	if len(records) > 0 {
		n.config.logger.Info(
			fmt.Sprintf("replayed %d transactions", len(records)),
			"component", "node",
		)
	}
	return nil
}

func (n *Node) isStarted() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.started
}

// WaitForIndexer blocks until every committed event has been projected into
// the metadata store
func (n *Node) WaitForIndexer(ctx context.Context) error {
	if !n.isStarted() {
		return ErrNodeNotStarted
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if n.indexer.LastSequence() >= n.executor.LastEventSequence() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")
	n.mu.Lock()
	n.started = false
	n.mu.Unlock()
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("API shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain queued events into the projections
	n.config.logger.Debug("shutdown phase 2: draining indexer")
	if n.indexer != nil {
		n.indexer.Stop()
	}

	// Phase 3: Cleanup resources
	n.config.logger.Debug("shutdown phase 3: cleanup resources")
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
