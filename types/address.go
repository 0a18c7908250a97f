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

package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const AddressLength = 20

// Address identifies an account, a component, or an asset. The zero value is
// the null address.
type Address [AddressLength]byte

// ZeroAddress is the null address
var ZeroAddress Address

// NativeAsset is the asset identifier sentinel for the native value
var NativeAsset = ZeroAddress

// ParseAddress decodes a hex address, with or without a leading 0x
func ParseAddress(s string) (Address, error) {
	var ret Address
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != AddressLength*2 {
		return ret, fmt.Errorf(
			"invalid address length: expected %d hex characters, got %d",
			AddressLength*2,
			len(s),
		)
	}
	if _, err := hex.Decode(ret[:], []byte(s)); err != nil {
		return ret, fmt.Errorf("invalid address: %w", err)
	}
	return ret, nil
}

// MustParseAddress is like ParseAddress but panics on error. It is intended
// for constants and tests.
func MustParseAddress(s string) Address {
	ret, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return ret
}

// BytesToAddress returns an address from the given bytes. Longer input is
// cropped from the left and shorter input is left-padded with zeros.
func BytesToAddress(b []byte) Address {
	var ret Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(ret[AddressLength-len(b):], b)
	return ret
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	tmp, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}
