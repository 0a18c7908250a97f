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

package database_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database"
)

func TestDatabasePersistence(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(nil, prometheus.NewRegistry(), dataDir)
	require.NoError(t, err)
	_, err = db.Blob().Append([]byte("tx"))
	require.NoError(t, err)
	require.NoError(t, db.Metadata().SetCheckpoint(4, nil))
	require.NoError(t, db.Close())

	db, err = database.New(nil, nil, dataDir)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	assert.Equal(t, dataDir, db.DataDir())
	assert.Equal(t, uint64(1), db.Blob().LastSequence())
	seq, err := db.Metadata().GetCheckpoint(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), seq)
}

func TestDatabaseInMemory(t *testing.T) {
	db, err := database.New(nil, nil, "")
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	assert.Equal(t, uint64(0), db.Blob().LastSequence())
}
