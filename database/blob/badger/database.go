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

package badger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var txLogPrefix = []byte("txlog_")

// BlobStoreBadger keeps the append-only log of committed transactions in
// badger. Data is not persisted when no data directory is configured
type BlobStoreBadger struct {
	promRegistry  prometheus.Registerer
	db            *badger.DB
	logger        *slog.Logger
	gcTicker      *time.Ticker
	gcStopCh      chan struct{}
	appendedTotal prometheus.Counter
	dataDir       string
	gcWg          sync.WaitGroup
	lastSeq       uint64
	mu            sync.Mutex
	gcEnabled     bool
}

// New creates a new database
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	db := &BlobStoreBadger{
		// Enable GC by default for disk-backed stores
		gcEnabled: true,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var badgerOpts badger.Options
	if db.dataDir == "" {
		// No dataDir, use in-memory config
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
		db.gcEnabled = false
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(db.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(db.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(filepath.Join(db.dataDir, "blob")).
			WithCompression(options.Snappy)
	}
	badgerOpts = badgerOpts.
		WithLogger(NewBadgerLogger(db.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	blobDb, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	db.db = blobDb
	if err := db.init(); err != nil {
		return db, err
	}
	return db, nil
}

func (d *BlobStoreBadger) init() error {
	if d.promRegistry != nil {
		d.appendedTotal = promauto.With(d.promRegistry).NewCounter(
			prometheus.CounterOpts{
				Name: "gavel_txlog_appended_total",
				Help: "total number of transactions appended to the log",
			},
		)
	}
	lastSeq, err := d.findLastSequence()
	if err != nil {
		return err
	}
	d.lastSeq = lastSeq
	if d.gcEnabled {
		d.gcTicker = time.NewTicker(5 * time.Minute)
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.blobGc(d.gcTicker, d.gcStopCh)
	}
	return nil
}

func (d *BlobStoreBadger) blobGc(t *time.Ticker, stop <-chan struct{}) {
	defer d.gcWg.Done()
	for {
		select {
		case <-t.C:
			for {
				err := d.db.RunValueLogGC(0.5)
				if err == nil {
					// Run it again if it just ran successfully
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					d.logger.Warn(
						"blob DB: GC failure",
						"component", "database",
						"error", err,
					)
				}
				break
			}
		case <-stop:
			return
		}
	}
}

// Close stops background GC and closes the database
func (d *BlobStoreBadger) Close() error {
	if d.gcTicker != nil {
		d.gcTicker.Stop()
		close(d.gcStopCh)
		d.gcWg.Wait()
		d.gcTicker = nil
	}
	return d.db.Close()
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

func txLogKey(seq uint64) []byte {
	key := make([]byte, len(txLogPrefix)+8)
	copy(key, txLogPrefix)
	binary.BigEndian.PutUint64(key[len(txLogPrefix):], seq)
	return key
}

func (d *BlobStoreBadger) findLastSequence() (uint64, error) {
	var lastSeq uint64
	err := d.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Reverse = true
		iterOpts.PrefetchValues = false
		iterOpts.Prefix = txLogPrefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		// Seek past the largest possible key for a reverse scan
		it.Seek(txLogKey(^uint64(0)))
		if it.ValidForPrefix(txLogPrefix) {
			key := it.Item().Key()
			lastSeq = binary.BigEndian.Uint64(key[len(txLogPrefix):])
		}
		return nil
	})
	return lastSeq, err
}

// LastSequence returns the sequence number of the last appended record
func (d *BlobStoreBadger) LastSequence() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeq
}

// Append stores a record at the next sequence number and returns it
func (d *BlobStoreBadger) Append(data []byte) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	seq := d.lastSeq + 1
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(txLogKey(seq), data)
	})
	if err != nil {
		return 0, fmt.Errorf("append transaction %d: %w", seq, err)
	}
	d.lastSeq = seq
	if d.appendedTotal != nil {
		d.appendedTotal.Inc()
	}
	return seq, nil
}

// Iterate calls fn for each record in sequence order. Iteration stops at the
// first error
func (d *BlobStoreBadger) Iterate(fn func(seq uint64, data []byte) error) error {
	return d.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = txLogPrefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			seq := binary.BigEndian.Uint64(item.Key()[len(txLogPrefix):])
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(seq, data); err != nil {
				return err
			}
		}
		return nil
	})
}
