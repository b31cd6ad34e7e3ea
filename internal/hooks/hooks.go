// Package hooks dispatches interview lifecycle events to registered handlers.
package hooks

import (
	"context"
	"sync"
	"time"

	"github.com/soyeahso/evaluet/internal/logging"
)

// Event names for the hook system.
const (
	EventSessionStart = "session_start"
	EventSessionEnd   = "session_end"
	EventReportReady  = "report_ready"
	EventReportFailed = "report_failed"
	EventServerStart  = "server_start"
	EventServerStop   = "server_stop"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventSessionStart,
	EventSessionEnd,
	EventReportReady,
	EventReportFailed,
	EventServerStart,
	EventServerStop,
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	At    time.Time      `json:"at"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles a hook event. A returned error is logged and does not stop
// other handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager holds hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	inflight sync.WaitGroup
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event under name.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

func (m *Manager) snapshot(event string) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]namedHandler(nil), m.handlers[event]...)
}

// Emit runs every handler for event in registration order and returns when
// all of them have finished.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	handlers := m.snapshot(event)
	if len(handlers) == 0 {
		return
	}
	p := Payload{Event: event, At: time.Now().UTC(), Data: data}
	for _, h := range handlers {
		m.call(ctx, h, p)
	}
}

// EmitAsync runs every handler for event on its own goroutine and returns
// immediately. Wait blocks until they are done.
func (m *Manager) EmitAsync(ctx context.Context, event string, data map[string]any) {
	handlers := m.snapshot(event)
	if len(handlers) == 0 {
		return
	}
	p := Payload{Event: event, At: time.Now().UTC(), Data: data}
	m.inflight.Add(len(handlers))
	for _, h := range handlers {
		go func() {
			defer m.inflight.Done()
			m.call(ctx, h, p)
		}()
	}
}

// Wait blocks until handlers started by EmitAsync return or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) {
	start := time.Now()
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().
			Err(err).
			Str("event", p.Event).
			Str("handler", h.name).
			Msg("hook handler failed")
		return
	}
	m.log.Debug().
		Str("event", p.Event).
		Str("handler", h.name).
		Dur("took", time.Since(start)).
		Msg("hook handled")
}
