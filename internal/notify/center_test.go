package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"crewcall/internal/auth"
	apperrors "crewcall/internal/errors"
	"crewcall/internal/model"
)

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListUnreadByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCenter_SnapshotOrdering(t *testing.T) {
	uid := uuid.New()
	base := time.Now()

	// Stored in arbitrary mutation order, listed newest-first by the store.
	newestFirst := []model.Notification{
		{ID: uuid.New(), UserID: uid, CreatedAt: base.Add(3 * time.Minute)},
		{ID: uuid.New(), UserID: uid, Read: true, CreatedAt: base.Add(2 * time.Minute)},
		{ID: uuid.New(), UserID: uid, CreatedAt: base.Add(1 * time.Minute)},
	}

	repo := new(MockNotificationRepository)
	repo.On("ListByUser", mock.Anything, uid).Return(newestFirst, nil)

	center := NewCenter(repo, nil)
	snap, err := center.SnapshotFor(context.Background(), uid)

	assert.NoError(t, err)
	assert.Len(t, snap.Notifications, 3)
	for i := 1; i < len(snap.Notifications); i++ {
		assert.True(t, snap.Notifications[i-1].CreatedAt.After(snap.Notifications[i].CreatedAt))
	}
	assert.Equal(t, 2, snap.Unread)
}

func TestCenter_SubscribeDeliversInitialSnapshot(t *testing.T) {
	uid := uuid.New()
	repo := new(MockNotificationRepository)
	repo.On("ListByUser", mock.Anything, uid).
		Return([]model.Notification{{ID: uuid.New(), UserID: uid}}, nil)

	center := NewCenter(repo, nil)
	sub, err := center.Subscribe(context.Background(), uid)
	assert.NoError(t, err)
	defer sub.Close()

	select {
	case snap := <-sub.Snapshots():
		assert.Len(t, snap.Notifications, 1)
		assert.Equal(t, 1, snap.Unread)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}
}

func TestCenter_CreateRefreshesFeeds(t *testing.T) {
	uid := uuid.New()
	created := model.Notification{ID: uuid.New(), UserID: uid, Title: "New assignment"}

	repo := new(MockNotificationRepository)
	repo.On("ListByUser", mock.Anything, uid).Return([]model.Notification{}, nil).Once()
	repo.On("ListByUser", mock.Anything, uid).Return([]model.Notification{created}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Notification")).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	center := NewCenter(repo, nil)
	center.Start(ctx, auth.NewSessionBus(nil))

	sub, err := center.Subscribe(ctx, uid)
	assert.NoError(t, err)
	defer sub.Close()

	initial := <-sub.Snapshots()
	assert.Empty(t, initial.Notifications)

	n := created
	assert.NoError(t, center.Create(ctx, &n))

	select {
	case snap := <-sub.Snapshots():
		assert.Len(t, snap.Notifications, 1)
		assert.Equal(t, "New assignment", snap.Notifications[0].Title)
		assert.Equal(t, 1, snap.Unread)
	case <-time.After(time.Second):
		t.Fatal("no refreshed snapshot delivered")
	}
}

func TestCenter_MarkAsRead(t *testing.T) {
	uid := uuid.New()
	other := uuid.New()
	id := uuid.New()

	tests := []struct {
		name          string
		setupMock     func(*MockNotificationRepository)
		expectedError error
	}{
		{
			name: "marks unread notification",
			setupMock: func(repo *MockNotificationRepository) {
				repo.On("FindByID", mock.Anything, id).
					Return(&model.Notification{ID: id, UserID: uid}, nil)
				repo.On("MarkRead", mock.Anything, id).Return(nil)
			},
		},
		{
			name: "already read is a no-op that still writes",
			setupMock: func(repo *MockNotificationRepository) {
				repo.On("FindByID", mock.Anything, id).
					Return(&model.Notification{ID: id, UserID: uid, Read: true}, nil)
				repo.On("MarkRead", mock.Anything, id).Return(nil)
			},
		},
		{
			name: "rejects foreign notification",
			setupMock: func(repo *MockNotificationRepository) {
				repo.On("FindByID", mock.Anything, id).
					Return(&model.Notification{ID: id, UserID: other}, nil)
			},
			expectedError: apperrors.ErrNotOwner,
		},
		{
			name: "missing notification",
			setupMock: func(repo *MockNotificationRepository) {
				repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrNotificationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNotificationRepository)
			tt.setupMock(repo)

			center := NewCenter(repo, nil)
			err := center.MarkAsRead(context.Background(), uid, id)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCenter_MarkAllAsRead(t *testing.T) {
	uid := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	unread := []model.Notification{
		{ID: a, UserID: uid},
		{ID: b, UserID: uid},
		{ID: c, UserID: uid},
	}

	t.Run("all succeed", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		repo.On("ListUnreadByUser", mock.Anything, uid).Return(unread, nil)
		repo.On("MarkRead", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

		center := NewCenter(repo, nil)
		result, err := center.MarkAllAsRead(context.Background(), uid)

		assert.NoError(t, err)
		assert.Len(t, result.Items, 3)
		assert.Equal(t, 0, result.FailedCount())
	})

	t.Run("partial failure reports mixed state", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		repo.On("ListUnreadByUser", mock.Anything, uid).Return(unread, nil)
		repo.On("MarkRead", mock.Anything, a).Return(nil)
		repo.On("MarkRead", mock.Anything, b).Return(errors.New("write failed"))
		repo.On("MarkRead", mock.Anything, c).Return(nil)

		center := NewCenter(repo, nil)
		result, err := center.MarkAllAsRead(context.Background(), uid)

		assert.Equal(t, ErrPartialMarkRead, err)
		assert.Len(t, result.Items, 3)
		assert.Equal(t, 1, result.FailedCount())
		for _, item := range result.Items {
			if item.ID == b {
				assert.Error(t, item.Err)
			} else {
				assert.NoError(t, item.Err)
			}
		}
	})
}

func TestCenter_SignedOutClosesFeeds(t *testing.T) {
	uid := uuid.New()
	repo := new(MockNotificationRepository)
	repo.On("ListByUser", mock.Anything, uid).Return([]model.Notification{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := auth.NewSessionBus(nil)
	center := NewCenter(repo, nil)
	center.Start(ctx, bus)

	sub, err := center.Subscribe(ctx, uid)
	assert.NoError(t, err)

	<-sub.Snapshots() // initial

	bus.Publish(ctx, auth.SessionEvent{
		Kind:      auth.SessionSignedOut,
		SessionID: "session-1",
		UserID:    uid,
		At:        time.Now(),
	})

	select {
	case _, ok := <-sub.Snapshots():
		assert.False(t, ok, "feed channel should be closed after sign-out")
	case <-time.After(time.Second):
		t.Fatal("feed not torn down after sign-out")
	}
}
