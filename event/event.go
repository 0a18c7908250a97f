// Copyright 2024 Blink Labs Software
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

package event

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const EventQueueSize = 20

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

// Event is an immutable record of a committed state transition. Sequence is
// assigned when the producing call commits and is unique per node.
type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
	Sequence  uint64
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// Subscriber receives the events of every type it was registered for, in
// publish order. Close may be called more than once.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

// channelSubscriber is the subscriber behind Subscribe. Deliver blocks until
// the consumer has room, so a slow consumer holds up publishing rather than
// missing events.
type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{
		ch: make(chan Event, buffer),
	}
}

func (c *channelSubscriber) Deliver(evt Event) (err error) {
	// Hold the read lock for the whole send so that Close waits for
	// in-flight sends before closing the channel
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel deliver panic: %v", r)
		}
	}()
	c.ch <- evt
	return nil
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// subscription is one registered subscriber and the types it receives
type subscription struct {
	sub   Subscriber
	kind  string
	types map[EventType]struct{}
}

// EventBus delivers committed events to subscribers. Delivery is
// synchronous: Publish returns once every matching subscriber has accepted
// the event, and subscribers see events in the order they were published.
type EventBus struct {
	subs      map[EventSubscriberId]*subscription
	byType    map[EventType][]EventSubscriberId
	metrics   *eventMetrics
	logger    *slog.Logger
	lastSubId EventSubscriberId
	mu        sync.RWMutex
	handlerWg sync.WaitGroup
}

// NewEventBus creates a new EventBus. Metrics are registered when a
// prometheus registry is provided
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		subs:   make(map[EventSubscriberId]*subscription),
		byType: make(map[EventType][]EventSubscriberId),
		logger: logger.With("component", "event"),
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	return e
}

func (e *EventBus) addSubscriber(
	sub Subscriber,
	kind string,
	eventTypes []EventType,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSubId++
	subId := e.lastSubId
	s := &subscription{
		sub:   sub,
		kind:  kind,
		types: make(map[EventType]struct{}, len(eventTypes)),
	}
	for _, evtType := range eventTypes {
		if _, ok := s.types[evtType]; ok {
			continue
		}
		s.types[evtType] = struct{}{}
		// Ids only grow, so each list stays in subscription order
		e.byType[evtType] = append(e.byType[evtType], subId)
	}
	e.subs[subId] = s
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(kind).Inc()
	}
	return subId
}

// Subscribe returns a channel that receives events of the given types
func (e *EventBus) Subscribe(
	eventTypes ...EventType,
) (EventSubscriberId, <-chan Event) {
	chSub := newChannelSubscriber(EventQueueSize)
	subId := e.addSubscriber(chSub, "channel", eventTypes)
	return subId, chSub.ch
}

// SubscribeFunc calls handlerFunc from a dedicated goroutine for each event
// of the given types
func (e *EventBus) SubscribeFunc(
	handlerFunc EventHandlerFunc,
	eventTypes ...EventType,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventTypes...)
	e.handlerWg.Add(1)
	go func() {
		defer e.handlerWg.Done()
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// RegisterSubscriber adds a custom Subscriber for the given types
func (e *EventBus) RegisterSubscriber(
	sub Subscriber,
	eventTypes ...EventType,
) EventSubscriberId {
	return e.addSubscriber(sub, "custom", eventTypes)
}

// Unsubscribe removes a subscriber and closes it. Unknown ids are ignored
func (e *EventBus) Unsubscribe(subId EventSubscriberId) {
	e.mu.Lock()
	s, ok := e.subs[subId]
	if ok {
		delete(e.subs, subId)
		for evtType := range s.types {
			ids := slices.DeleteFunc(
				e.byType[evtType],
				func(id EventSubscriberId) bool { return id == subId },
			)
			if len(ids) == 0 {
				delete(e.byType, evtType)
			} else {
				e.byType[evtType] = ids
			}
		}
		if e.metrics != nil {
			e.metrics.subscribers.WithLabelValues(s.kind).Dec()
		}
	}
	e.mu.Unlock()
	if ok {
		s.sub.Close()
	}
}

// Publish delivers an event to every subscriber of its type. A subscriber
// that fails to accept an event is removed from the bus
func (e *EventBus) Publish(evt Event) {
	e.mu.RLock()
	ids := slices.Clone(e.byType[evt.Type])
	targets := make([]*subscription, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, e.subs[id])
	}
	e.mu.RUnlock()
	for idx, s := range targets {
		err := deliver(s.sub, evt)
		if err == nil {
			continue
		}
		e.Unsubscribe(ids[idx])
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(string(evt.Type), s.kind).
				Inc()
		}
		e.logger.Debug(
			"event delivery error",
			"type", evt.Type,
			"sequence", evt.Sequence,
			"error", err,
		)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(evt.Type)).Inc()
	}
}

func deliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// Stop closes all subscribers and waits for SubscribeFunc handlers to return.
// The bus accepts new subscribers afterwards.
func (e *EventBus) Stop() {
	e.mu.Lock()
	subs := e.subs
	e.subs = make(map[EventSubscriberId]*subscription)
	e.byType = make(map[EventType][]EventSubscriberId)
	e.mu.Unlock()
	for _, s := range subs {
		s.sub.Close()
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
	e.handlerWg.Wait()
}
