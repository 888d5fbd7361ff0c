package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/model"
)

// RequirementRepository defines persistence operations for crew requirements.
type RequirementRepository interface {
	Create(ctx context.Context, req *model.Requirement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Requirement, error)
	ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Requirement, error)
	Update(ctx context.Context, req *model.Requirement) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type requirementRepository struct {
	db *gorm.DB
}

// NewRequirementRepository builds a GORM-backed repository.
func NewRequirementRepository(db *gorm.DB) RequirementRepository {
	return &requirementRepository{db: db}
}

func (r *requirementRepository) Create(ctx context.Context, req *model.Requirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requirementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Requirement, error) {
	var req model.Requirement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepository) ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Requirement, error) {
	var list []model.Requirement
	if err := r.db.WithContext(ctx).Where("production_id = ?", productionID).Order("created_at").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *requirementRepository) Update(ctx context.Context, req *model.Requirement) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *requirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Requirement{}).Error
}
