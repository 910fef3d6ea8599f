// Package bus implements the in-process notification hub that fans events out
// to every connected dashboard session. Delivery is ephemeral: there is no
// queueing or replay, and a session registered after a broadcast never sees it.
package bus

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope is the wire shape of a broadcast event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Session is one connected dashboard observer. Sessions are tracked only for
// lifecycle and counting; broadcasts always go to all of them.
type Session struct {
	ID          string
	ConnectedAt time.Time

	events chan Envelope
}

// Events returns the channel on which the session receives broadcasts. The
// channel is closed when the session is unregistered or the hub shuts down.
func (s *Session) Events() <-chan Envelope {
	return s.events
}

// Hub is the process-wide connection registry. All mutation goes through
// Register/Unregister; Close tears everything down at shutdown.
type Hub struct {
	logger *zap.Logger
	buffer int

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
}

// NewHub constructs a Hub whose sessions buffer up to buffer undelivered
// events before the hub starts dropping for that session.
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{
		logger:   logger,
		buffer:   buffer,
		sessions: make(map[*Session]struct{}),
	}
}

// Register adds a new session and returns it. Returns nil if the hub has
// already been closed.
func (h *Hub) Register() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	s := &Session{
		ID:          uuid.NewString(),
		ConnectedAt: time.Now().UTC(),
		events:      make(chan Envelope, h.buffer),
	}
	h.sessions[s] = struct{}{}

	h.logger.Info("dashboard connected",
		zap.String("session_id", s.ID),
		zap.Int("sessions", len(h.sessions)),
	)
	return s
}

// Unregister removes the session and closes its event channel. Safe to call
// more than once for the same session.
func (h *Hub) Unregister(s *Session) {
	if s == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	close(s.events)

	h.logger.Info("dashboard disconnected",
		zap.String("session_id", s.ID),
		zap.Int("sessions", len(h.sessions)),
	)
}

// Broadcast fans the payload out to every currently registered session.
// Delivery is best-effort and never blocks the publisher: a session whose
// buffer is full has the event dropped for it alone. The hub lock orders
// concurrent broadcasts, so every session observes a single publisher's
// events in publish order.
func (h *Hub) Broadcast(topic string, payload any) {
	env := Envelope{Event: topic, Data: payload}

	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.sessions {
		select {
		case s.events <- env:
		default:
			h.logger.Warn("dropping event for slow session",
				zap.String("session_id", s.ID),
				zap.String("event", topic),
			)
		}
	}
}

// Count reports the number of currently connected sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close unregisters every session and rejects future registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for s := range h.sessions {
		delete(h.sessions, s)
		close(s.events)
	}
}
