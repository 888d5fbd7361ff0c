package session

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

// MockCredentialStore is a mock implementation of auth.CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) CreateAccount(ctx context.Context, email, password string) (*model.Credential, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

func (m *MockCredentialStore) Authenticate(ctx context.Context, email, password string) (*model.Credential, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

func (m *MockCredentialStore) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	args := m.Called(ctx, id, newPassword)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, uid uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastSeen(ctx context.Context, uid uuid.UUID, at time.Time) error {
	args := m.Called(ctx, uid, at)
	return args.Error(0)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreSession(ctx context.Context, sessionID string, userID uuid.UUID, email string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetSession(ctx context.Context, sessionID string) (uuid.UUID, string, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, token, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	args := m.Called(ctx, toEmail, toName, resetURL)
	return args.Error(0)
}

func newTestManager(creds *MockCredentialStore, users *MockUserRepository, tokens *MockTokenStore, mailer *MockMailer) (*Manager, *auth.SessionBus) {
	bus := auth.NewSessionBus(nil)
	m := NewManager(creds, users, auth.NewJWTService("test-secret"), tokens,
		bus, mailer, "https://crewcall.example/reset", 20*time.Millisecond)
	return m, bus
}

func TestManager_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockCredentialStore, *MockUserRepository)
		expectedError error
		check         func(*testing.T, *model.User)
	}{
		{
			name: "successful registration",
			input: RegisterInput{
				Email:    "producer@example.com",
				Password: "password123",
				Name:     "Paula Producer",
				Role:     model.RoleProducer,
			},
			setupMock: func(creds *MockCredentialStore, users *MockUserRepository) {
				creds.On("CreateAccount", mock.Anything, "producer@example.com", "password123").
					Return(&model.Credential{ID: uuid.New(), Email: "producer@example.com"}, nil)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			check: func(t *testing.T, user *model.User) {
				assert.Equal(t, model.RoleProducer, user.Role)
				assert.NotEqual(t, uuid.Nil, user.UID)
			},
		},
		{
			name: "specialization cleared for non-operators",
			input: RegisterInput{
				Email:          "booking@example.com",
				Password:       "password123",
				Name:           "Bob Booking",
				Role:           model.RoleBookingOfficer,
				Specialization: "camera",
			},
			setupMock: func(creds *MockCredentialStore, users *MockUserRepository) {
				creds.On("CreateAccount", mock.Anything, "booking@example.com", "password123").
					Return(&model.Credential{ID: uuid.New(), Email: "booking@example.com"}, nil)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			check: func(t *testing.T, user *model.User) {
				assert.Empty(t, user.Specialization)
			},
		},
		{
			name: "invalid role rejected before credential creation",
			input: RegisterInput{
				Email:    "someone@example.com",
				Password: "password123",
				Name:     "Someone",
				Role:     "director",
			},
			setupMock:     func(creds *MockCredentialStore, users *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRole,
		},
		{
			name: "profile write failure leaves credential behind",
			input: RegisterInput{
				Email:    "half@example.com",
				Password: "password123",
				Name:     "Half Done",
				Role:     model.RoleOperator,
			},
			setupMock: func(creds *MockCredentialStore, users *MockUserRepository) {
				creds.On("CreateAccount", mock.Anything, "half@example.com", "password123").
					Return(&model.Credential{ID: uuid.New(), Email: "half@example.com"}, nil)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Return(errors.New("write failed"))
			},
			expectedError: errors.New("create profile: write failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := new(MockCredentialStore)
			users := new(MockUserRepository)
			tt.setupMock(creds, users)

			m, _ := newTestManager(creds, users, new(MockTokenStore), new(MockMailer))
			user, err := m.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				tt.check(t, user)
			}

			creds.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

func TestManager_FailsafeInitialization(t *testing.T) {
	m, _ := newTestManager(new(MockCredentialStore), new(MockUserRepository), new(MockTokenStore), new(MockMailer))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Close()

	assert.False(t, m.Initialized())

	// No session event arrives; the failsafe window must flip the state with
	// no session recorded as logged in.
	assert.Eventually(t, m.Initialized, time.Second, 5*time.Millisecond)
	_, ok := m.CurrentUID("some-session")
	assert.False(t, ok)
	assert.Equal(t, 0, m.ActiveSessions())
}

func TestManager_LoginPublishesSignedIn(t *testing.T) {
	uid := uuid.New()
	creds := new(MockCredentialStore)
	users := new(MockUserRepository)
	tokens := new(MockTokenStore)

	creds.On("Authenticate", mock.Anything, "op@example.com", "password123").
		Return(&model.Credential{ID: uid, Email: "op@example.com"}, nil)
	users.On("FindByID", mock.Anything, uid).
		Return(&model.User{UID: uid, Email: "op@example.com", Role: model.RoleOperator}, nil)
	users.On("TouchLastSeen", mock.Anything, uid, mock.AnythingOfType("time.Time")).Return(nil)
	tokens.On("StoreSession", mock.Anything, mock.AnythingOfType("string"), uid, "op@example.com", auth.RefreshTokenExpiry).Return(nil)

	m, bus := newTestManager(creds, users, tokens, new(MockMailer))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Close()

	events, cancelSub := bus.Subscribe()
	defer cancelSub()

	pair, user, err := m.Login(ctx, "op@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, uid, user.UID)

	select {
	case ev := <-events:
		assert.Equal(t, auth.SessionSignedIn, ev.Kind)
		assert.Equal(t, uid, ev.UserID)
		assert.NotEmpty(t, ev.SessionID)

		// The published event, not the Login return, drives session state.
		assert.Eventually(t, func() bool {
			got, ok := m.CurrentUID(ev.SessionID)
			return ok && got == uid
		}, time.Second, 5*time.Millisecond)
		assert.True(t, m.Initialized())
	case <-time.After(time.Second):
		t.Fatal("no session event published")
	}

	creds.AssertExpectations(t)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestManager_LoginOrphanedCredential(t *testing.T) {
	uid := uuid.New()
	creds := new(MockCredentialStore)
	users := new(MockUserRepository)

	creds.On("Authenticate", mock.Anything, "orphan@example.com", "password123").
		Return(&model.Credential{ID: uid, Email: "orphan@example.com"}, nil)
	users.On("FindByID", mock.Anything, uid).Return(nil, gorm.ErrRecordNotFound)

	m, _ := newTestManager(creds, users, new(MockTokenStore), new(MockMailer))
	pair, user, err := m.Login(context.Background(), "orphan@example.com", "password123")

	assert.Equal(t, apperrors.ErrProfileNotFound, err)
	assert.Nil(t, pair)
	assert.Nil(t, user)
}

func TestManager_LogoutPublishesSignedOut(t *testing.T) {
	uid := uuid.New()
	jwtService := auth.NewJWTService("test-secret")
	sessionID, refreshToken, err := jwtService.GenerateRefreshToken(uid, "op@example.com", model.RoleOperator)
	assert.NoError(t, err)

	tokens := new(MockTokenStore)
	tokens.On("DeleteSession", mock.Anything, sessionID).Return(nil)

	m, bus := newTestManager(new(MockCredentialStore), new(MockUserRepository), tokens, new(MockMailer))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Close()

	// Seed a signed-in session through the bus, then log it out.
	bus.Publish(ctx, auth.SessionEvent{
		Kind:      auth.SessionSignedIn,
		SessionID: sessionID,
		UserID:    uid,
		Email:     "op@example.com",
		At:        time.Now(),
	})
	assert.Eventually(t, func() bool {
		_, ok := m.CurrentUID(sessionID)
		return ok
	}, time.Second, 5*time.Millisecond)

	assert.NoError(t, m.Logout(ctx, refreshToken, ""))

	assert.Eventually(t, func() bool {
		_, ok := m.CurrentUID(sessionID)
		return !ok
	}, time.Second, 5*time.Millisecond)
	tokens.AssertExpectations(t)
}

func TestManager_ResetPasswordUnknownEmail(t *testing.T) {
	creds := new(MockCredentialStore)
	mailer := new(MockMailer)
	creds.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	m, _ := newTestManager(creds, new(MockUserRepository), new(MockTokenStore), mailer)
	err := m.ResetPassword(context.Background(), "nobody@example.com")

	// Unknown addresses must not be distinguishable from known ones.
	assert.NoError(t, err)
	mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	creds.AssertExpectations(t)
}

func TestManager_ResetPasswordSendsMail(t *testing.T) {
	uid := uuid.New()
	creds := new(MockCredentialStore)
	users := new(MockUserRepository)
	tokens := new(MockTokenStore)
	mailer := new(MockMailer)

	creds.On("FindByEmail", mock.Anything, "op@example.com").
		Return(&model.Credential{ID: uid, Email: "op@example.com"}, nil)
	tokens.On("StoreResetToken", mock.Anything, mock.AnythingOfType("string"), uid, time.Hour).Return(nil)
	users.On("FindByID", mock.Anything, uid).
		Return(&model.User{UID: uid, Name: "Olive Operator"}, nil)
	mailer.On("SendPasswordReset", mock.Anything, "op@example.com", "Olive Operator", mock.AnythingOfType("string")).Return(nil)

	m, _ := newTestManager(creds, users, tokens, mailer)
	assert.NoError(t, m.ResetPassword(context.Background(), "op@example.com"))

	mailer.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestManager_UpdateProfileKeepsRole(t *testing.T) {
	uid := uuid.New()
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, uid).
		Return(&model.User{UID: uid, Name: "Old Name", Role: model.RoleProducer, Specialization: ""}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Name == "New Name" && u.Role == model.RoleProducer && u.Specialization == ""
	})).Return(nil)

	m, _ := newTestManager(new(MockCredentialStore), users, new(MockTokenStore), new(MockMailer))
	user, err := m.UpdateProfile(context.Background(), uid, "New Name", "camera")

	assert.NoError(t, err)
	// Specialization only applies to operators.
	assert.Empty(t, user.Specialization)
	users.AssertExpectations(t)
}

func TestManager_RefreshRejectsMismatchedSession(t *testing.T) {
	uid := uuid.New()
	jwtService := auth.NewJWTService("test-secret")
	sessionID, refreshToken, err := jwtService.GenerateRefreshToken(uid, "op@example.com", model.RoleOperator)
	assert.NoError(t, err)

	tokens := new(MockTokenStore)
	tokens.On("GetSession", mock.Anything, sessionID).Return(uuid.New(), "someone-else@example.com", nil)

	m, _ := newTestManager(new(MockCredentialStore), new(MockUserRepository), tokens, new(MockMailer))
	access, err := m.Refresh(context.Background(), refreshToken)

	assert.Equal(t, auth.ErrInvalidCredentials, err)
	assert.Empty(t, access)
}
