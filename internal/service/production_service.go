package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewcall/internal/cache"
	"crewcall/internal/errors"
	"crewcall/internal/model"
	"crewcall/internal/notify"
	"crewcall/internal/repository"
)

const productionCacheTTL = 5 * time.Minute

// statusTransitions is the allowed production lifecycle.
var statusTransitions = map[string][]string{
	model.StatusRequested:  {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed:  {model.StatusInProgress, model.StatusCancelled},
	model.StatusInProgress: {model.StatusCompleted, model.StatusCancelled},
	model.StatusCompleted:  {},
	model.StatusCancelled:  {},
}

// ProductionInput carries the production form fields.
type ProductionInput struct {
	Name            string
	Date            time.Time
	CallTime        time.Time
	StartTime       time.Time
	EndTime         time.Time
	Venue           string
	LocationDetails string
	Notes           string
}

// ProductionService handles production operations.
type ProductionService interface {
	Create(ctx context.Context, in ProductionInput, requestedBy uuid.UUID) (*model.Production, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Production, error)
	List(ctx context.Context) ([]model.Production, error)
	ListByStatus(ctx context.Context, status string) ([]model.Production, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, in ProductionInput) (*model.Production, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Production, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productionService struct {
	repo   repository.ProductionRepository
	cache  *cache.Client
	center *notify.Center
}

// NewProductionService creates a new production service.
func NewProductionService(repo repository.ProductionRepository, cache *cache.Client, center *notify.Center) ProductionService {
	return &productionService{
		repo:   repo,
		cache:  cache,
		center: center,
	}
}

func (s *productionService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("production:%s", id.String())
}

// Create stores a new production in the requested state.
func (s *productionService) Create(ctx context.Context, in ProductionInput, requestedBy uuid.UUID) (*model.Production, error) {
	p := &model.Production{
		ID:              uuid.New(),
		Name:            in.Name,
		Date:            in.Date,
		CallTime:        in.CallTime,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Venue:           in.Venue,
		LocationDetails: in.LocationDetails,
		Status:          model.StatusRequested,
		Notes:           in.Notes,
		RequestedBy:     requestedBy,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create production: %w", err)
	}
	return p, nil
}

// Get retrieves a production by ID with caching.
func (s *productionService) Get(ctx context.Context, id uuid.UUID) (*model.Production, error) {
	// Try cache first
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Production
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductionNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(p); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, productionCacheTTL)
	}
	return p, nil
}

func (s *productionService) List(ctx context.Context) ([]model.Production, error) {
	return s.repo.List(ctx)
}

func (s *productionService) ListByStatus(ctx context.Context, status string) ([]model.Production, error) {
	return s.repo.ListByStatus(ctx, status)
}

// UpdateDetails replaces the production form fields. Status is untouched
// here; it moves only through UpdateStatus.
func (s *productionService) UpdateDetails(ctx context.Context, id uuid.UUID, in ProductionInput) (*model.Production, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductionNotFound
		}
		return nil, err
	}

	p.Name = in.Name
	p.Date = in.Date
	p.CallTime = in.CallTime
	p.StartTime = in.StartTime
	p.EndTime = in.EndTime
	p.Venue = in.Venue
	p.LocationDetails = in.LocationDetails
	p.Notes = in.Notes
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update production: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return p, nil
}

// UpdateStatus moves a production along its lifecycle and notifies the
// requesting producer.
func (s *productionService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Production, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductionNotFound
		}
		return nil, err
	}

	if !transitionAllowed(p.Status, status) {
		return nil, errors.ErrInvalidStatusTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update production status: %w", err)
	}
	p.Status = status
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	if p.RequestedBy != uuid.Nil {
		n := &model.Notification{
			UserID:       p.RequestedBy,
			ProductionID: &p.ID,
			Type:         model.NotificationProductionStatus,
			Title:        fmt.Sprintf("%s is now %s", p.Name, status),
			Body:         fmt.Sprintf("Production status changed to %s.", status),
		}
		if err := s.center.Create(ctx, n); err != nil {
			log.Printf("production: notify status change for %s: %v", p.ID, err)
		}
	}
	return p, nil
}

func (s *productionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
