package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/model"
)

// AssignmentRepository defines persistence operations for crew assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Assignment, error)
	ListByOperator(ctx context.Context, operatorUID uuid.UUID) ([]model.Assignment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository builds a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var a model.Assignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Assignment, error) {
	var list []model.Assignment
	if err := r.db.WithContext(ctx).Where("production_id = ?", productionID).Order("created_at").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *assignmentRepository) ListByOperator(ctx context.Context, operatorUID uuid.UUID) ([]model.Assignment, error) {
	var list []model.Assignment
	if err := r.db.WithContext(ctx).Where("operator_uid = ?", operatorUID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Assignment{}).Error
}
