package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/errors"
	"crewcall/internal/model"
	"crewcall/internal/repository"
)

// MessageService handles per-production chat messages.
type MessageService interface {
	Post(ctx context.Context, productionID, senderUID uuid.UUID, body string) (*model.Message, error)
	ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Message, error)
}

type messageService struct {
	repo        repository.MessageRepository
	productions repository.ProductionRepository
}

// NewMessageService creates a new message service.
func NewMessageService(repo repository.MessageRepository, productions repository.ProductionRepository) MessageService {
	return &messageService{
		repo:        repo,
		productions: productions,
	}
}

// Post stores a message under an existing production.
func (s *messageService) Post(ctx context.Context, productionID, senderUID uuid.UUID, body string) (*model.Message, error) {
	if _, err := s.productions.FindByID(ctx, productionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductionNotFound
		}
		return nil, err
	}

	m := &model.Message{
		ID:           uuid.New(),
		ProductionID: productionID,
		SenderUID:    senderUID,
		Body:         body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// ListByProduction returns the production's messages oldest first.
func (s *messageService) ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Message, error) {
	return s.repo.ListByProduction(ctx, productionID)
}
