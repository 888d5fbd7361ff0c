package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"crewcall/internal/model"
	"crewcall/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already has a credential.
	ErrEmailTaken = errors.New("email already registered")
)

// CredentialStore is the identity-service boundary: create-account, sign-in
// and password maintenance over bare credentials. Profile data lives
// elsewhere.
type CredentialStore interface {
	CreateAccount(ctx context.Context, email, password string) (*model.Credential, error)
	Authenticate(ctx context.Context, email, password string) (*model.Credential, error)
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error
}

type credentialStore struct {
	repo repository.CredentialRepository
}

// NewCredentialStore creates a repository-backed credential store.
func NewCredentialStore(repo repository.CredentialRepository) CredentialStore {
	return &credentialStore{repo: repo}
}

// CreateAccount creates a credential with a hashed password.
func (s *credentialStore) CreateAccount(ctx context.Context, email, password string) (*model.Credential, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check credential existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred := &model.Credential{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, cred); err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	return cred, nil
}

// Authenticate verifies email and password against the stored credential.
func (s *credentialStore) Authenticate(ctx context.Context, email, password string) (*model.Credential, error) {
	cred, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return cred, nil
}

func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	return s.repo.FindByEmail(ctx, email)
}

// UpdatePassword replaces the stored hash.
func (s *credentialStore) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, id, string(hashedPassword))
}
