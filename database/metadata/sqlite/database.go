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

// Package sqlite keeps the queryable projections of governance events
// (proposals, votes, accounts and the event feed) in SQLite through GORM
package sqlite

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/blinklabs-io/gavel/database/models"
)

const (
	metadataFileName = "metadata.sqlite"
	vacuumInterval   = 24 * time.Hour
)

var memoryDbCounter atomic.Uint64

type MetadataStoreSqlite struct {
	promRegistry prometheus.Registerer
	db           *gorm.DB
	logger       *slog.Logger
	dataDir      string
	stopCh       chan struct{}
	stopOnce     sync.Once
	vacuumWg     sync.WaitGroup
}

// metadataDsn builds the connection string for the store. Each in-memory
// store gets its own shared-cache database so that pooled connections agree
func metadataDsn(dataDir string) (string, error) {
	if dataDir == "" {
		return fmt.Sprintf(
			"file:gavel-%d?mode=memory&cache=shared",
			memoryDbCounter.Add(1),
		), nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=cache_size(-50000)",
		filepath.Join(dataDir, metadataFileName),
	), nil
}

// New opens the metadata store under dataDir and migrates its tables. An
// empty dataDir keeps everything in memory
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	dsn, err := metadataDsn(dataDir)
	if err != nil {
		return nil, err
	}
	gormDb, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open metadata database: %w", err)
	}
	d := &MetadataStoreSqlite{
		db:           gormDb,
		dataDir:      dataDir,
		logger:       logger.With("component", "database"),
		promRegistry: promRegistry,
		stopCh:       make(chan struct{}),
	}
	if err := d.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		d.Close() //nolint:errcheck
		return nil, err
	}
	if err := d.db.AutoMigrate(models.MigrateModels...); err != nil {
		d.Close() //nolint:errcheck
		return nil, fmt.Errorf("migrate metadata tables: %w", err)
	}
	if dataDir != "" {
		d.vacuumWg.Add(1)
		go d.vacuumLoop()
	}
	return d, nil
}

// vacuumLoop reclaims free pages from the on-disk database once a day
func (d *MetadataStoreSqlite) vacuumLoop() {
	defer d.vacuumWg.Done()
	ticker := time.NewTicker(vacuumInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.logger.Debug("running vacuum on sqlite metadata database")
			if err := d.db.Exec("VACUUM").Error; err != nil {
				d.logger.Error(
					"failed to free unused space in metadata store",
					"error", err,
				)
			}
		}
	}
}

// Close stops the vacuum loop and closes the database
func (d *MetadataStoreSqlite) Close() error {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
	d.vacuumWg.Wait()
	sqlDb, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDb.Close()
}

func (d *MetadataStoreSqlite) DB() *gorm.DB {
	return d.db
}

// Transaction runs fn inside a database transaction, rolling back when fn
// returns an error
func (d *MetadataStoreSqlite) Transaction(fn func(txn *gorm.DB) error) error {
	return d.db.Transaction(fn)
}

func (d *MetadataStoreSqlite) resolveDB(txn *gorm.DB) *gorm.DB {
	if txn != nil {
		return txn
	}
	return d.db
}
