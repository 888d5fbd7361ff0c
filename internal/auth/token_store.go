package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crewcall/internal/cache"
)

const (
	sessionKeyPrefix     = "session:"
	accessTokenKeyPrefix = "blacklist:access_token:"
	resetTokenKeyPrefix  = "reset_token:"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreSession(ctx context.Context, sessionID string, userID uuid.UUID, email string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (userID uuid.UUID, email string, err error)
	DeleteSession(ctx context.Context, sessionID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

// TokenStore handles storage and retrieval of session and reset tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

type sessionData struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// StoreSession stores a refresh session in Redis with TTL. One session
// document exists per session ID, so a client instance holds exactly one
// active session.
func (s *TokenStore) StoreSession(ctx context.Context, sessionID string, userID uuid.UUID, email string, ttl time.Duration) error {
	payload, err := json.Marshal(sessionData{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sessionID, payload, ttl)
}

// GetSession retrieves session data from Redis.
func (s *TokenStore) GetSession(ctx context.Context, sessionID string) (uuid.UUID, string, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil || data == nil {
		return uuid.Nil, "", fmt.Errorf("session not found")
	}

	var sess sessionData
	if err := json.Unmarshal(data, &sess); err != nil {
		return uuid.Nil, "", fmt.Errorf("unmarshal session data: %w", err)
	}
	return sess.UserID, sess.Email, nil
}

// DeleteSession removes a session from Redis.
func (s *TokenStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+sessionID)
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	// Store a simple marker
	return s.cache.Set(ctx, accessTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil // Not blacklisted if error (fail safe)
	}
	return data != nil, nil
}

// StoreResetToken stores a password reset token with TTL.
func (s *TokenStore) StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.cache.Set(ctx, resetTokenKeyPrefix+token, []byte(userID.String()), ttl)
}

// ConsumeResetToken resolves a reset token to its user and deletes it so it
// can be used only once.
func (s *TokenStore) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	data, err := s.cache.Get(ctx, resetTokenKeyPrefix+token)
	if err != nil || data == nil {
		return uuid.Nil, fmt.Errorf("reset token not found")
	}
	userID, err := uuid.Parse(string(data))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse reset token data: %w", err)
	}
	_ = s.cache.Delete(ctx, resetTokenKeyPrefix+token)
	return userID, nil
}
