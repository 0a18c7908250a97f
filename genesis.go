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

package gavel

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

// Genesis describes the state a node starts from. It is applied on every
// start before the transaction log is replayed
type Genesis struct {
	// Balances of the governance token
	Balances map[types.Address]uint64 `yaml:"balances"`
	// Assets holds balances of other assets by asset id. Native value uses
	// the null asset id
	Assets map[types.Address]map[types.Address]uint64 `yaml:"assets"`
	// Treasury amounts are minted to the owner and deposited into custody
	Treasury map[types.Address]uint64 `yaml:"treasury"`
}

// LoadGenesisFile reads a YAML genesis document
func LoadGenesisFile(path string) (Genesis, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("error reading genesis file: %w", err)
	}
	var ret Genesis
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return Genesis{}, fmt.Errorf("error parsing genesis file: %w", err)
	}
	return ret, nil
}

func (g *Genesis) validate(ledgerAddress types.Address) error {
	for holder := range g.Balances {
		if holder.IsZero() {
			return fmt.Errorf("genesis balance for the null address")
		}
	}
	for assetId, balances := range g.Assets {
		if assetId == ledgerAddress {
			return fmt.Errorf(
				"genesis asset %s is the governance token, use balances instead",
				assetId,
			)
		}
		for holder := range balances {
			if holder.IsZero() {
				return fmt.Errorf(
					"genesis balance of asset %s for the null address",
					assetId,
				)
			}
		}
	}
	return nil
}

// assetIds returns every non-governance asset the genesis refers to
func (g *Genesis) assetIds(ledgerAddress types.Address) []types.Address {
	ret := []types.Address{types.NativeAsset}
	for assetId := range g.Assets {
		ret = append(ret, assetId)
	}
	for assetId := range g.Treasury {
		ret = append(ret, assetId)
	}
	ret = slices.DeleteFunc(ret, func(a types.Address) bool {
		return a == ledgerAddress
	})
	return sortedUnique(ret)
}

func sortedUnique(addrs []types.Address) []types.Address {
	slices.SortFunc(addrs, func(a, b types.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(addrs)
}

func sortedKeys[V any](m map[types.Address]V) []types.Address {
	ret := make([]types.Address, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	return sortedUnique(ret)
}

// applyGenesis runs as the owner. Map contents are applied in address order
// so that replays produce identical event sequences
func (n *Node) applyGenesis(txn *host.Txn) error {
	genesis := n.config.genesis
	for _, holder := range sortedKeys(genesis.Balances) {
		if err := n.ledger.Mint(txn, holder, genesis.Balances[holder]); err != nil {
			return fmt.Errorf("genesis balance for %s: %w", holder, err)
		}
	}
	for _, assetId := range sortedKeys(genesis.Assets) {
		balances := genesis.Assets[assetId]
		for _, holder := range sortedKeys(balances) {
			if err := n.mint(txn, assetId, holder, balances[holder]); err != nil {
				return fmt.Errorf(
					"genesis balance of asset %s for %s: %w",
					assetId,
					holder,
					err,
				)
			}
		}
	}
	for _, assetId := range sortedKeys(genesis.Treasury) {
		amount := genesis.Treasury[assetId]
		if err := n.mint(txn, assetId, txn.Caller(), amount); err != nil {
			return fmt.Errorf("genesis treasury asset %s: %w", assetId, err)
		}
		if err := n.fundTreasury(txn, assetId, amount); err != nil {
			return fmt.Errorf("genesis treasury asset %s: %w", assetId, err)
		}
	}
	return nil
}
