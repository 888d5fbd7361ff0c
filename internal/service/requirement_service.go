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

// RequirementInput carries the crew-requirement form fields.
type RequirementInput struct {
	Role           string
	Specialization string
	Count          int
	Notes          string
}

// RequirementService handles crew-requirement operations.
type RequirementService interface {
	Create(ctx context.Context, productionID uuid.UUID, in RequirementInput, createdBy uuid.UUID) (*model.Requirement, error)
	ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Requirement, error)
	Update(ctx context.Context, id uuid.UUID, in RequirementInput) (*model.Requirement, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type requirementService struct {
	repo        repository.RequirementRepository
	productions repository.ProductionRepository
}

// NewRequirementService creates a new requirement service.
func NewRequirementService(repo repository.RequirementRepository, productions repository.ProductionRepository) RequirementService {
	return &requirementService{
		repo:        repo,
		productions: productions,
	}
}

// Create stores a requirement under an existing production.
func (s *requirementService) Create(ctx context.Context, productionID uuid.UUID, in RequirementInput, createdBy uuid.UUID) (*model.Requirement, error) {
	if _, err := s.productions.FindByID(ctx, productionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductionNotFound
		}
		return nil, err
	}

	count := in.Count
	if count < 1 {
		count = 1
	}
	req := &model.Requirement{
		ID:             uuid.New(),
		ProductionID:   productionID,
		Role:           in.Role,
		Specialization: in.Specialization,
		Count:          count,
		Notes:          in.Notes,
		CreatedBy:      createdBy,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create requirement: %w", err)
	}
	return req, nil
}

func (s *requirementService) ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Requirement, error) {
	return s.repo.ListByProduction(ctx, productionID)
}

func (s *requirementService) Update(ctx context.Context, id uuid.UUID, in RequirementInput) (*model.Requirement, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRequirementNotFound
		}
		return nil, err
	}

	req.Role = in.Role
	req.Specialization = in.Specialization
	if in.Count >= 1 {
		req.Count = in.Count
	}
	req.Notes = in.Notes
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update requirement: %w", err)
	}
	return req, nil
}

func (s *requirementService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return nil
}
