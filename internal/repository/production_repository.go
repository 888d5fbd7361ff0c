package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/model"
)

// ProductionRepository defines persistence operations for productions.
type ProductionRepository interface {
	Create(ctx context.Context, p *model.Production) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Production, error)
	List(ctx context.Context) ([]model.Production, error)
	ListByStatus(ctx context.Context, status string) ([]model.Production, error)
	ListStartingBetween(ctx context.Context, from, until time.Time, statuses []string) ([]model.Production, error)
	Update(ctx context.Context, p *model.Production) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productionRepository struct {
	db *gorm.DB
}

// NewProductionRepository builds a GORM-backed repository.
func NewProductionRepository(db *gorm.DB) ProductionRepository {
	return &productionRepository{db: db}
}

func (r *productionRepository) Create(ctx context.Context, p *model.Production) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Production, error) {
	var p model.Production
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productionRepository) List(ctx context.Context) ([]model.Production, error) {
	var list []model.Production
	if err := r.db.WithContext(ctx).Order("start_time").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productionRepository) ListByStatus(ctx context.Context, status string) ([]model.Production, error) {
	var list []model.Production
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("start_time").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productionRepository) ListStartingBetween(ctx context.Context, from, until time.Time, statuses []string) ([]model.Production, error) {
	var list []model.Production
	q := r.db.WithContext(ctx).Where("start_time > ? AND start_time <= ?", from, until)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("start_time").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productionRepository) Update(ctx context.Context, p *model.Production) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Production{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *productionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Production{}).Error
}
