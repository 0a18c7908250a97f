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

package host

import (
	"sync/atomic"

	"github.com/blinklabs-io/gavel/types"
)

var ErrReentrantCall = types.NewError(
	types.KindStateConflict,
	"ReentrantCall",
	"reentrant call",
)

// Guard rejects re-entry into a protected operation while an earlier
// invocation of it is still on the call stack
type Guard struct {
	entered atomic.Bool
}

// Enter marks the guard as held. The returned function releases it
func (g *Guard) Enter() (func(), error) {
	if !g.entered.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	return func() { g.entered.Store(false) }, nil
}
