package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Broker fans payloads out to in-process subscribers and mirrors them over a
// redis pub/sub channel so other instances see the same stream. Messages
// arriving from redis that originated on this instance are dropped to avoid
// double delivery.
type Broker struct {
	cache   *Client
	channel string
	source  string

	mu     sync.Mutex
	subs   map[int]chan []byte
	nextID int
	closed bool
}

type envelope struct {
	Source string          `json:"src"`
	Data   json.RawMessage `json:"data"`
}

// NewBroker creates a broker on the given pub/sub channel. The cache client
// may be nil-backed; the broker then works in-process only.
func NewBroker(c *Client, channel string) *Broker {
	return &Broker{
		cache:   c,
		channel: channel,
		source:  uuid.New().String(),
		subs:    make(map[int]chan []byte),
	}
}

// Start consumes the redis side of the channel until ctx is cancelled.
func (b *Broker) Start(ctx context.Context) {
	msgs, closeSub := b.cache.PSubscribe(ctx, b.channel)
	go func() {
		defer closeSub()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-msgs:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal(raw, &env); err != nil {
					continue
				}
				if env.Source == b.source {
					continue
				}
				b.dispatch(env.Data)
			}
		}
	}()
}

// Publish delivers payload to local subscribers and mirrors it to redis.
func (b *Broker) Publish(ctx context.Context, payload []byte) {
	b.dispatch(payload)
	env := envelope{Source: b.source, Data: payload}
	if raw, err := json.Marshal(env); err == nil {
		_ = b.cache.Publish(ctx, b.channel, raw)
	}
}

// Subscribe registers a local subscriber. The returned cancel func must be
// called to release it; the channel closes on cancel.
func (b *Broker) Subscribe() (<-chan []byte, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan []byte, 16)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Close closes all subscriber channels.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub)
	}
}

func (b *Broker) dispatch(payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub <- payload:
		default:
			// slow subscriber: drop rather than block the publisher
		}
	}
}
