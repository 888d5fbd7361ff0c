package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/model"
)

// CredentialRepository defines persistence operations for identity records.
type CredentialRepository interface {
	Create(ctx context.Context, cred *model.Credential) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Credential, error)
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository builds a GORM-backed repository.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *model.Credential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}

func (r *credentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Credential, error) {
	var cred model.Credential
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var cred model.Credential
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&model.Credential{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}
