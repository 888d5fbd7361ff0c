package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/auth"
	apperrors "crewcall/internal/errors"
	"crewcall/internal/mail"
	"crewcall/internal/model"
	"crewcall/internal/repository"
)

// DefaultInitTimeout is the failsafe window for the Uninitialized state.
const DefaultInitTimeout = 5 * time.Second

const resetTokenTTL = time.Hour

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	Role           string
	Specialization string
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Manager owns the authenticated-user lifecycle. It is the single source of
// truth for "who is logged in": session state transitions are driven
// exclusively by credential-store events, never by the return values of
// Login or Logout.
type Manager struct {
	creds        auth.CredentialStore
	users        repository.UserRepository
	jwt          *auth.JWTService
	tokens       auth.TokenStoreInterface
	bus          *auth.SessionBus
	mailer       mail.Mailer
	resetURLBase string
	initTimeout  time.Duration

	mu          sync.RWMutex
	initialized bool
	active      map[string]uuid.UUID // sessionID -> uid

	stopOnce  sync.Once
	stop      chan struct{}
	cancelSub func()
}

// NewManager creates a session manager. Call Start before serving dependents.
func NewManager(
	creds auth.CredentialStore,
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokens auth.TokenStoreInterface,
	bus *auth.SessionBus,
	mailer mail.Mailer,
	resetURLBase string,
	initTimeout time.Duration,
) *Manager {
	if initTimeout <= 0 {
		initTimeout = DefaultInitTimeout
	}
	return &Manager{
		creds:        creds,
		users:        users,
		jwt:          jwtService,
		tokens:       tokens,
		bus:          bus,
		mailer:       mailer,
		resetURLBase: resetURLBase,
		initTimeout:  initTimeout,
		active:       make(map[string]uuid.UUID),
		stop:         make(chan struct{}),
	}
}

// Start subscribes to the credential event stream and runs the
// Uninitialized -> Initialized transition: the first event or the failsafe
// timeout, whichever comes first, flips the manager to initialized. The
// failsafe does not cancel the subscription; a late event still lands and
// overwrites state.
func (m *Manager) Start(ctx context.Context) {
	events, cancel := m.bus.Subscribe()
	m.cancelSub = cancel

	go func() {
		failsafe := time.NewTimer(m.initTimeout)
		defer failsafe.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-failsafe.C:
				m.markInitialized()
			case ev, ok := <-events:
				if !ok {
					return
				}
				m.apply(ev)
			}
		}
	}()
}

// Close tears the event subscription and the failsafe down together.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.cancelSub != nil {
			m.cancelSub()
		}
	})
}

// Initialized reports whether the manager has left the Uninitialized state.
// Dependents must not serve while this is false.
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// CurrentUID returns the user behind an active session, or false when the
// session is not logged in.
func (m *Manager) CurrentUID(sessionID string) (uuid.UUID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uid, ok := m.active[sessionID]
	return uid, ok
}

// ActiveSessions returns the number of sessions currently logged in.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

func (m *Manager) markInitialized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
}

func (m *Manager) apply(ev auth.SessionEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	switch ev.Kind {
	case auth.SessionSignedIn:
		m.active[ev.SessionID] = ev.UserID
	case auth.SessionSignedOut:
		delete(m.active, ev.SessionID)
	}
}

// Register creates a credential and then the matching profile document. When
// the profile write fails the operation reports failure; the credential is
// not rolled back, so a retry with the same email will see ErrEmailTaken.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if !model.ValidRole(in.Role) {
		return nil, apperrors.ErrInvalidRole
	}
	if in.Role != model.RoleOperator {
		in.Specialization = ""
	}

	cred, err := m.creds.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		UID:            cred.ID,
		Email:          in.Email,
		Name:           in.Name,
		Role:           in.Role,
		Specialization: in.Specialization,
		CreatedAt:      now,
		LastSeen:       now,
	}
	if err := m.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return user, nil
}

// Login authenticates, touches the profile's last-seen marker and issues a
// token pair. Success here is form-level only; the published signed-in event
// is what moves session state.
func (m *Manager) Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error) {
	cred, err := m.creds.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	user, err := m.users.FindByID(ctx, cred.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Orphaned credential from a half-finished registration.
			return nil, nil, apperrors.ErrProfileNotFound
		}
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}

	if err := m.users.TouchLastSeen(ctx, user.UID, time.Now()); err != nil {
		log.Printf("session: touch last_seen for %s: %v", user.UID, err)
	}

	sessionID, refreshToken, err := m.jwt.GenerateRefreshToken(user.UID, user.Email, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}
	accessToken, err := m.jwt.GenerateAccessToken(user.UID, user.Email, user.Role, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}
	if err := m.tokens.StoreSession(ctx, sessionID, user.UID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}

	m.bus.Publish(ctx, auth.SessionEvent{
		Kind:      auth.SessionSignedIn,
		SessionID: sessionID,
		UserID:    user.UID,
		Email:     user.Email,
		At:        time.Now(),
	})

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

// Refresh validates a refresh token against the stored session and issues a
// new access token.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := m.jwt.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", auth.ErrInvalidCredentials
	}
	storedUID, storedEmail, err := m.tokens.GetSession(ctx, claims.ID)
	if err != nil {
		return "", auth.ErrInvalidCredentials
	}
	if storedUID != claims.UserID || storedEmail != claims.Email {
		return "", auth.ErrInvalidCredentials
	}
	return m.jwt.GenerateAccessToken(claims.UserID, claims.Email, claims.Role, claims.ID)
}

// Logout revokes the session behind the refresh token and blacklists the
// presented access token for its remaining lifetime. The signed-out event
// drives the state transition.
func (m *Manager) Logout(ctx context.Context, refreshToken, accessToken string) error {
	claims, err := m.jwt.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return auth.ErrInvalidCredentials
	}

	if err := m.tokens.DeleteSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if accessToken != "" {
		if accessClaims, err := m.jwt.ValidateToken(accessToken); err == nil && accessClaims.ID != "" {
			ttl := time.Until(accessClaims.ExpiresAt.Time)
			if ttl > 0 {
				_ = m.tokens.BlacklistAccessToken(ctx, accessClaims.ID, ttl)
			}
		}
	}

	m.bus.Publish(ctx, auth.SessionEvent{
		Kind:      auth.SessionSignedOut,
		SessionID: claims.ID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		At:        time.Now(),
	})
	return nil
}

// ResetPassword issues a reset token and mails the reset link. An unknown
// email is not an error: the response must not leak which addresses exist.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	cred, err := m.creds.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("find credential: %w", err)
	}

	token := uuid.New().String()
	if err := m.tokens.StoreResetToken(ctx, token, cred.ID, resetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	name := email
	if user, err := m.users.FindByID(ctx, cred.ID); err == nil {
		name = user.Name
	}
	resetURL := fmt.Sprintf("%s?token=%s", m.resetURLBase, token)
	if err := m.mailer.SendPasswordReset(ctx, email, name, resetURL); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ConfirmPasswordReset completes a reset started by ResetPassword. The token
// is single-use.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	uid, err := m.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		return auth.ErrInvalidCredentials
	}
	return m.creds.UpdatePassword(ctx, uid, newPassword)
}

// UpdateProfile edits the mutable profile fields. Role is immutable after
// registration; there is no path that writes it.
func (m *Manager) UpdateProfile(ctx context.Context, uid uuid.UUID, name, specialization string) (*model.User, error) {
	user, err := m.FetchUserDetails(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if user.Role == model.RoleOperator {
		user.Specialization = specialization
	}
	if err := m.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// FetchUserDetails retrieves a profile document. A missing profile is a soft
// failure reported as ErrProfileNotFound.
func (m *Manager) FetchUserDetails(ctx context.Context, uid uuid.UUID) (*model.User, error) {
	user, err := m.users.FindByID(ctx, uid)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	return user, nil
}
