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
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/types"
)

var ErrTxnFinished = errors.New("transaction already finished")

// Txn is the atomic scope of a single top-level call. State changes made
// through a Txn are journaled with OnRollback so that a failure anywhere in
// the call leaves no partial effects. Events are buffered until commit.
//
// A Txn value also carries the caller identity of the current call frame.
// Nested frames created with Call share the journal but see their own caller.
type Txn struct {
	state  *txnState
	caller types.Address
}

type txnState struct {
	now      time.Time
	undo     []func()
	onCommit []func()
	events   []event.Event
	lock     sync.Mutex
	finished bool
}

func NewTxn(caller types.Address, now time.Time) *Txn {
	return &Txn{
		state: &txnState{
			now: now,
		},
		caller: caller,
	}
}

// Caller returns the identity of the immediate caller of the current frame
func (t *Txn) Caller() types.Address {
	return t.caller
}

// Now returns the time at which the top-level call is executing. It is fixed
// for the lifetime of the transaction.
func (t *Txn) Now() time.Time {
	return t.state.now
}

// OnRollback registers a function that reverts a state change. Undo
// functions run in reverse registration order.
func (t *Txn) OnRollback(fn func()) {
	t.state.undo = append(t.state.undo, fn)
}

// OnCommit registers a function to run once the transaction commits. It is
// meant for side effects that cannot be undone, such as counters.
func (t *Txn) OnCommit(fn func()) {
	t.state.onCommit = append(t.state.onCommit, fn)
}

// Emit buffers an event for publication after commit
func (t *Txn) Emit(evtType event.EventType, data any) {
	t.state.events = append(
		t.state.events,
		event.Event{
			Type:      evtType,
			Timestamp: t.state.now,
			Data:      data,
		},
	)
}

// Events returns the events buffered so far
func (t *Txn) Events() []event.Event {
	return slices.Clone(t.state.events)
}

// Call runs fn in a nested frame whose caller is the given identity. If fn
// fails, every change and event recorded inside the frame is reverted before
// the error is returned to the outer frame.
func (t *Txn) Call(caller types.Address, fn func(*Txn) error) error {
	undoMark := len(t.state.undo)
	commitMark := len(t.state.onCommit)
	eventMark := len(t.state.events)
	frame := &Txn{
		state:  t.state,
		caller: caller,
	}
	if err := fn(frame); err != nil {
		t.revertTo(undoMark)
		t.state.onCommit = t.state.onCommit[:commitMark]
		t.state.events = t.state.events[:eventMark]
		return err
	}
	return nil
}

func (t *Txn) revertTo(mark int) {
	for i := len(t.state.undo) - 1; i >= mark; i-- {
		t.state.undo[i]()
	}
	t.state.undo = t.state.undo[:mark]
}

// Do executes the specified function in the context of the transaction. Any
// errors returned will result in the transaction being rolled back
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if err2 := t.Rollback(); err2 != nil {
			return errors.Join(err, err2)
		}
		return err
	}
	return t.Commit()
}

// Commit finalizes the transaction. Buffered events are returned via Events
func (t *Txn) Commit() error {
	t.state.lock.Lock()
	defer t.state.lock.Unlock()
	if t.state.finished {
		return ErrTxnFinished
	}
	t.state.undo = nil
	t.state.finished = true
	for _, fn := range t.state.onCommit {
		fn()
	}
	t.state.onCommit = nil
	return nil
}

// Rollback reverts all journaled changes and discards buffered events
func (t *Txn) Rollback() error {
	t.state.lock.Lock()
	defer t.state.lock.Unlock()
	if t.state.finished {
		return nil
	}
	t.revertTo(0)
	t.state.onCommit = nil
	t.state.events = nil
	t.state.finished = true
	return nil
}

// SetMapValue sets m[key] and journals the previous entry
func SetMapValue[K comparable, V any](txn *Txn, m map[K]V, key K, value V) {
	oldValue, existed := m[key]
	m[key] = value
	txn.OnRollback(func() {
		if existed {
			m[key] = oldValue
		} else {
			delete(m, key)
		}
	})
}

// DeleteMapValue removes m[key] and journals the previous entry
func DeleteMapValue[K comparable, V any](txn *Txn, m map[K]V, key K) {
	oldValue, existed := m[key]
	if !existed {
		return
	}
	delete(m, key)
	txn.OnRollback(func() {
		m[key] = oldValue
	})
}

// SetValue sets *p and journals the previous value
func SetValue[V any](txn *Txn, p *V, value V) {
	oldValue := *p
	*p = value
	txn.OnRollback(func() {
		*p = oldValue
	})
}
