package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/model"
)

// MessageRepository defines persistence operations for production messages.
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a GORM-backed repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepository) ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Message, error) {
	var list []model.Message
	if err := r.db.WithContext(ctx).Where("production_id = ?", productionID).Order("created_at").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
