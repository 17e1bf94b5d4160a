// Package events implements spec §4.16's typed pub-sub bus. The bus is
// always constructed explicitly and passed to whatever needs it — spec §9
// calls out the original's module-level `event_bus` singleton as an
// anti-pattern to redesign away from, since a shared global would leak
// state across concurrent scans.
package events

import (
	"sync"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// Callback receives one emitted event. A callback that panics is caught,
// logged, and must not affect other callbacks or subsequent emissions.
type Callback func(model.Event)

// Bus is a per-scan-process event bus: subscriptions and emission history
// it manages are scoped to whatever owns this instance, never shared
// globally.
type Bus struct {
	mu          sync.Mutex
	subscribers map[model.EventType][]Callback
	all         []Callback
	history     map[string][]model.Event
}

// New builds an empty Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[model.EventType][]Callback),
		history:     make(map[string][]model.Event),
	}
}

// Subscribe registers cb for events of exactly eventType.
func (b *Bus) Subscribe(eventType model.EventType, cb Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], cb)
}

// SubscribeAll registers cb for every event type emitted on this bus.
func (b *Bus) SubscribeAll(cb Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, cb)
}

// Emit appends event to its scan's history, then synchronously invokes
// every matching callback in registration order. A callback panic is
// recovered, logged, and does not interrupt the remaining callbacks.
func (b *Bus) Emit(event model.Event) {
	b.mu.Lock()
	b.history[event.ScanID] = append(b.history[event.ScanID], event)
	callbacks := make([]Callback, 0, len(b.subscribers[event.Type])+len(b.all))
	callbacks = append(callbacks, b.subscribers[event.Type]...)
	callbacks = append(callbacks, b.all...)
	b.mu.Unlock()

	for _, cb := range callbacks {
		b.invoke(cb, event)
	}
}

func (b *Bus) invoke(cb Callback, event model.Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warnf("event bus: callback panicked for %s: %v", event.Type, r)
		}
	}()
	cb(event)
}

// History returns every event emitted for scanID, in emission order.
func (b *Bus) History(scanID string) []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Event(nil), b.history[scanID]...)
}

// ClearHistory releases every event recorded for scanID.
func (b *Bus) ClearHistory(scanID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.history, scanID)
}
