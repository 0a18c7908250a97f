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

package database

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/database/blob/badger"
	"github.com/blinklabs-io/gavel/database/metadata/sqlite"
)

// Database pairs the transaction log (badger) with the queryable
// projections (sqlite)
type Database struct {
	logger   *slog.Logger
	blob     *badger.BlobStoreBadger
	metadata *sqlite.MetadataStoreSqlite
	dataDir  string
}

// Blob returns the underlying blob store instance
func (d *Database) Blob() *badger.BlobStoreBadger {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *sqlite.MetadataStoreSqlite {
	return d.metadata
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// New creates a new database instance with optional persistence using the
// provided data directory. Both stores are kept in memory when dataDir is empty
func New(
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	dataDir string,
) (*Database, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	db := &Database{
		logger:  logger,
		dataDir: dataDir,
	}
	metadataDb, err := sqlite.New(dataDir, logger, promRegistry)
	if err != nil {
		if metadataDb != nil {
			metadataDb.Close() //nolint:errcheck
		}
		return nil, err
	}
	db.metadata = metadataDb
	blobDb, err := badger.New(
		badger.WithLogger(logger),
		badger.WithPromRegistry(promRegistry),
		badger.WithDataDir(dataDir),
	)
	if err != nil {
		if blobDb != nil {
			blobDb.Close() //nolint:errcheck
		}
		metadataDb.Close() //nolint:errcheck
		return nil, err
	}
	db.blob = blobDb
	return db, nil
}
