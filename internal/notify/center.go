package notify

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/auth"
	"crewcall/internal/cache"
	apperrors "crewcall/internal/errors"
	"crewcall/internal/model"
	"crewcall/internal/repository"
)

// ErrPartialMarkRead is the aggregate failure for a bulk mark-as-read where
// some items succeeded and some failed. The store is left in the mixed state
// the individual outcomes describe; no rollback is attempted.
var ErrPartialMarkRead = errors.New("some notifications could not be marked read")

// Snapshot is the full recomputed view of one user's notifications, ordered
// by created_at descending. Live feeds always deliver whole snapshots, never
// diffs, so consumers see a consistent total order regardless of mutation
// ordering.
type Snapshot struct {
	Notifications []model.Notification `json:"notifications"`
	Unread        int                  `json:"unread"`
}

// Subscription is one live feed over a user's notifications.
type Subscription struct {
	ch     chan Snapshot
	cancel func()
	once   sync.Once
}

// Snapshots returns the feed channel. It closes when the subscription is
// closed or the owning session signs out.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.ch
}

// Close releases the subscription.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// ItemResult is the outcome of one item inside a batch mutation.
type ItemResult struct {
	ID  uuid.UUID `json:"id"`
	Err error     `json:"-"`
}

// BatchResult reports per-item outcomes so callers can tell full success
// from partial failure.
type BatchResult struct {
	Items []ItemResult
}

// FailedCount returns the number of failed items.
func (r BatchResult) FailedCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// Center maintains the live, ordered view of each subscribed user's
// notifications and owns the read-flag mutations.
type Center struct {
	repo   repository.NotificationRepository
	broker *cache.Broker

	mu     sync.Mutex
	feeds  map[uuid.UUID]map[int]*feed
	nextID int
}

type feed struct {
	sub *Subscription
}

// NewCenter creates a notification center. The cache client backs the
// cross-instance change channel.
func NewCenter(repo repository.NotificationRepository, c *cache.Client) *Center {
	return &Center{
		repo:   repo,
		broker: cache.NewBroker(c, "events:notifications"),
		feeds:  make(map[uuid.UUID]map[int]*feed),
	}
}

// Start consumes change pings and session events until ctx is cancelled.
// A signed-out session tears all of that user's feeds down immediately, so
// no stale data survives between a logout and the next login.
func (c *Center) Start(ctx context.Context, sessions *auth.SessionBus) {
	c.broker.Start(ctx)

	changes, cancelChanges := c.broker.Subscribe()
	events, cancelEvents := sessions.Subscribe()
	go func() {
		defer cancelChanges()
		defer cancelEvents()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-changes:
				if !ok {
					return
				}
				uid, err := uuid.Parse(string(payload))
				if err != nil {
					continue
				}
				c.refresh(ctx, uid)
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Kind == auth.SessionSignedOut {
					c.dropUser(ev.UserID)
				}
			}
		}
	}()
}

// Subscribe opens a live feed for a user. The initial snapshot is delivered
// before any change-driven one.
func (c *Center) Subscribe(ctx context.Context, uid uuid.UUID) (*Subscription, error) {
	snap, err := c.snapshot(ctx, uid)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	sub := &Subscription{ch: make(chan Snapshot, 1)}
	sub.cancel = func() { c.remove(uid, id) }
	if c.feeds[uid] == nil {
		c.feeds[uid] = make(map[int]*feed)
	}
	c.feeds[uid][id] = &feed{sub: sub}
	push(sub.ch, snap)
	c.mu.Unlock()

	return sub, nil
}

// SnapshotFor computes the current snapshot for a user without subscribing.
func (c *Center) SnapshotFor(ctx context.Context, uid uuid.UUID) (Snapshot, error) {
	return c.snapshot(ctx, uid)
}

// Create stores a notification and pings the owner's feeds.
func (c *Center) Create(ctx context.Context, n *model.Notification) error {
	if err := c.repo.Create(ctx, n); err != nil {
		return err
	}
	c.publishChange(ctx, n.UserID)
	return nil
}

// MarkAsRead flips read to true. Idempotent: an already-read notification is
// a harmless no-op that still round-trips through the store.
func (c *Center) MarkAsRead(ctx context.Context, uid, id uuid.UUID) error {
	n, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrNotificationNotFound
		}
		return err
	}
	if n.UserID != uid {
		return apperrors.ErrNotOwner
	}
	if err := c.repo.MarkRead(ctx, id); err != nil {
		return err
	}
	c.publishChange(ctx, uid)
	return nil
}

// MarkAllAsRead marks every currently-unread notification, one concurrent
// mutation per item, and waits for all to settle. Partial failure is
// reported as ErrPartialMarkRead alongside the per-item results.
func (c *Center) MarkAllAsRead(ctx context.Context, uid uuid.UUID) (BatchResult, error) {
	unread, err := c.repo.ListUnreadByUser(ctx, uid)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Items: make([]ItemResult, len(unread))}
	var wg sync.WaitGroup
	for i, n := range unread {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			result.Items[i] = ItemResult{ID: id, Err: c.repo.MarkRead(ctx, id)}
		}(i, n.ID)
	}
	wg.Wait()

	c.publishChange(ctx, uid)
	if result.FailedCount() > 0 {
		return result, ErrPartialMarkRead
	}
	return result, nil
}

func (c *Center) publishChange(ctx context.Context, uid uuid.UUID) {
	c.broker.Publish(ctx, []byte(uid.String()))
}

func (c *Center) snapshot(ctx context.Context, uid uuid.UUID) (Snapshot, error) {
	list, err := c.repo.ListByUser(ctx, uid)
	if err != nil {
		return Snapshot{}, err
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return Snapshot{Notifications: list, Unread: unread}, nil
}

// refresh recomputes the user's snapshot and delivers it to every feed.
func (c *Center) refresh(ctx context.Context, uid uuid.UUID) {
	c.mu.Lock()
	hasFeeds := len(c.feeds[uid]) > 0
	c.mu.Unlock()
	if !hasFeeds {
		return
	}

	snap, err := c.snapshot(ctx, uid)
	if err != nil {
		log.Printf("notify: refresh %s: %v", uid, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.feeds[uid] {
		push(f.sub.ch, snap)
	}
}

func (c *Center) remove(uid uuid.UUID, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if byID, ok := c.feeds[uid]; ok {
		if f, ok := byID[id]; ok {
			delete(byID, id)
			close(f.sub.ch)
		}
		if len(byID) == 0 {
			delete(c.feeds, uid)
		}
	}
}

// dropUser closes every feed a user holds.
func (c *Center) dropUser(uid uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, f := range c.feeds[uid] {
		delete(c.feeds[uid], id)
		close(f.sub.ch)
	}
	delete(c.feeds, uid)
}

// push delivers latest-wins: a slow consumer sees the newest snapshot, not a
// backlog.
func push(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
