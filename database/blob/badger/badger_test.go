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

package badger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database/blob/badger"
)

func TestAppendIterateInMemory(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	assert.Equal(t, uint64(0), store.LastSequence())
	for i := range 3 {
		seq, err := store.Append(fmt.Appendf(nil, "record-%d", i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), seq)
	}
	var seen []string
	err = store.Iterate(func(seq uint64, data []byte) error {
		seen = append(seen, fmt.Sprintf("%d:%s", seq, data))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1:record-0", "2:record-1", "3:record-2"}, seen)
}

func TestIterateStopsOnError(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	for range 3 {
		_, err := store.Append([]byte("x"))
		require.NoError(t, err)
	}
	testErr := errors.New("stop")
	count := 0
	err = store.Iterate(func(uint64, []byte) error {
		count++
		return testErr
	})
	require.ErrorIs(t, err, testErr)
	assert.Equal(t, 1, count)
}

func TestReopenResumesSequence(t *testing.T) {
	dataDir := t.TempDir()
	reg := prometheus.NewRegistry()
	store, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithPromRegistry(reg),
	)
	require.NoError(t, err)
	_, err = store.Append([]byte("a"))
	require.NoError(t, err)
	_, err = store.Append([]byte("b"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	assert.Equal(t, uint64(2), store.LastSequence())
	seq, err := store.Append([]byte("c"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
}
