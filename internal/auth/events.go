package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"crewcall/internal/cache"
)

// SessionEventKind discriminates session-change events.
type SessionEventKind string

const (
	// SessionSignedIn is published after a successful login or registration.
	SessionSignedIn SessionEventKind = "signed_in"
	// SessionSignedOut is published after a logout or session revocation.
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent is the credential store's session-change notification. It is
// the single authority on session state; login/logout return values only
// report form-level success to their callers.
type SessionEvent struct {
	Kind      SessionEventKind `json:"kind"`
	SessionID string           `json:"session_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Email     string           `json:"email"`
	At        time.Time        `json:"at"`
}

// SessionBus carries session-change events between the credential store and
// its subscribers, in-process and across instances.
type SessionBus struct {
	broker *cache.Broker
}

// NewSessionBus creates the bus on the session-events pub/sub channel.
func NewSessionBus(c *cache.Client) *SessionBus {
	return &SessionBus{broker: cache.NewBroker(c, "events:session")}
}

// Start begins consuming cross-instance events until ctx is cancelled.
func (b *SessionBus) Start(ctx context.Context) {
	b.broker.Start(ctx)
}

// Publish emits a session-change event to all subscribers.
func (b *SessionBus) Publish(ctx context.Context, ev SessionEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	b.broker.Publish(ctx, payload)
}

// Subscribe returns a stream of session events and a cancel func. The
// channel closes on cancel.
func (b *SessionBus) Subscribe() (<-chan SessionEvent, func()) {
	raw, cancel := b.broker.Subscribe()
	out := make(chan SessionEvent, 16)
	go func() {
		defer close(out)
		for payload := range raw {
			var ev SessionEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				continue
			}
			out <- ev
		}
	}()
	return out, cancel
}

// Close shuts the underlying broker down.
func (b *SessionBus) Close() {
	b.broker.Close()
}
