package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/model"
)

// DeviceTokenRepository defines persistence operations for push registrations.
type DeviceTokenRepository interface {
	Upsert(ctx context.Context, t *model.DeviceToken) error
	DeleteByToken(ctx context.Context, userID uuid.UUID, token string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DeviceToken, error)
}

type deviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository builds a GORM-backed repository.
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// Upsert re-registers a token that already exists, moving it to the given
// user. A device re-registering after a user switch must not leave the token
// attached to the previous user.
func (r *deviceTokenRepository) Upsert(ctx context.Context, t *model.DeviceToken) error {
	var existing model.DeviceToken
	err := r.db.WithContext(ctx).Where("token = ?", t.Token).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(t).Error
	}
	if err != nil {
		return err
	}
	existing.UserID = t.UserID
	existing.Platform = t.Platform
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *deviceTokenRepository) DeleteByToken(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&model.DeviceToken{}).Error
}

func (r *deviceTokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DeviceToken, error) {
	var list []model.DeviceToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
