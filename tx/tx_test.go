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

package tx_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/gavel/tx"
	"github.com/blinklabs-io/gavel/types"
)

func TestValidate(t *testing.T) {
	testDefs := []struct {
		tx          tx.Tx
		expectedErr error
	}{
		{tx: tx.Tx{Type: tx.TypeVote}},
		{tx: tx.Tx{Type: "bogus"}, expectedErr: tx.ErrUnknownType},
		{tx: tx.Tx{Type: tx.TypeUpdateConfig}, expectedErr: tx.ErrMissingParams},
		{tx: tx.Tx{Type: tx.TypeUpdateConfig, Params: &tx.Params{}}},
	}
	for _, testDef := range testDefs {
		err := testDef.tx.Validate()
		if testDef.expectedErr == nil {
			assert.NoError(t, err, "type %q", testDef.tx.Type)
			continue
		}
		assert.ErrorIs(t, err, testDef.expectedErr)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	}
}

func TestTxJSON(t *testing.T) {
	input := `{
		"type": "update_config",
		"caller": "0x00000000000000000000000000000000000000a1",
		"params": {"proposalThreshold": 1, "quorum": 20, "votingPeriod": "72h"}
	}`
	var txn tx.Tx
	require.NoError(t, json.Unmarshal([]byte(input), &txn))
	assert.Equal(t, tx.TypeUpdateConfig, txn.Type)
	assert.Equal(t, types.BytesToAddress([]byte{0xa1}), txn.Caller)
	require.NotNil(t, txn.Params)
	assert.Equal(t, tx.Duration(72*time.Hour), txn.Params.VotingPeriod)

	out, err := json.Marshal(txn)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"votingPeriod":"72h0m0s"`)
	assert.NotContains(t, string(out), `"recipient"`)
}

func TestTxYAML(t *testing.T) {
	input := `
type: create_proposal
caller: 0x00000000000000000000000000000000000000a1
description: pay the auditors
recipient: 0x00000000000000000000000000000000000000b1
amount: 10
`
	var txn tx.Tx
	require.NoError(t, yaml.Unmarshal([]byte(input), &txn))
	assert.Equal(t, tx.TypeCreateProposal, txn.Type)
	assert.Equal(t, "pay the auditors", txn.Description)
	assert.Equal(t, types.BytesToAddress([]byte{0xb1}), txn.Recipient)
	assert.Equal(t, uint64(10), txn.Amount)
	assert.True(t, txn.Asset.IsZero())
}

func TestRecordRoundTrip(t *testing.T) {
	record := tx.Record{
		Sequence:  3,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Tx: tx.Tx{
			Type:       tx.TypeVote,
			Caller:     types.BytesToAddress([]byte{0xa1}),
			ProposalId: 1,
			Support:    true,
		},
	}
	data, err := record.Encode()
	require.NoError(t, err)
	decoded, err := tx.DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)

	_, err = tx.DecodeRecord([]byte("not json"))
	assert.Error(t, err)
}
