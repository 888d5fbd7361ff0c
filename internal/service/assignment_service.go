package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"crewcall/internal/errors"
	"crewcall/internal/model"
	"crewcall/internal/notify"
	"crewcall/internal/repository"
)

// AssignmentDetail pairs an assignment with its operator's profile.
type AssignmentDetail struct {
	Assignment model.Assignment `json:"assignment"`
	Operator   *model.User      `json:"operator,omitempty"`
}

// AssignmentService handles crew-assignment operations.
type AssignmentService interface {
	Assign(ctx context.Context, productionID, requirementID, operatorUID, assignedBy uuid.UUID) (*model.Assignment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string, byUID uuid.UUID) (*model.Assignment, error)
	ListByOperator(ctx context.Context, operatorUID uuid.UUID) ([]model.Assignment, error)
	// ListDetailsByProduction resolves operator profiles with one concurrent
	// lookup per assignment.
	ListDetailsByProduction(ctx context.Context, productionID uuid.UUID) ([]AssignmentDetail, error)
}

type assignmentService struct {
	repo         repository.AssignmentRepository
	requirements repository.RequirementRepository
	productions  repository.ProductionRepository
	users        repository.UserRepository
	center       *notify.Center
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(
	repo repository.AssignmentRepository,
	requirements repository.RequirementRepository,
	productions repository.ProductionRepository,
	users repository.UserRepository,
	center *notify.Center,
) AssignmentService {
	return &assignmentService{
		repo:         repo,
		requirements: requirements,
		productions:  productions,
		users:        users,
		center:       center,
	}
}

// Assign offers a requirement slot to an operator and notifies them.
func (s *assignmentService) Assign(ctx context.Context, productionID, requirementID, operatorUID, assignedBy uuid.UUID) (*model.Assignment, error) {
	production, err := s.productions.FindByID(ctx, productionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductionNotFound
		}
		return nil, err
	}

	req, err := s.requirements.FindByID(ctx, requirementID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRequirementNotFound
		}
		return nil, err
	}
	if req.ProductionID != productionID {
		return nil, errors.ErrRequirementNotFound
	}

	operator, err := s.users.FindByID(ctx, operatorUID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProfileNotFound
		}
		return nil, err
	}
	if operator.Role != model.RoleOperator {
		return nil, errors.ErrRoleForbidden
	}

	a := &model.Assignment{
		ID:            uuid.New(),
		ProductionID:  productionID,
		RequirementID: requirementID,
		OperatorUID:   operatorUID,
		Status:        model.AssignmentOffered,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	n := &model.Notification{
		UserID:       operatorUID,
		ProductionID: &production.ID,
		Type:         model.NotificationAssignmentOffer,
		Title:        fmt.Sprintf("New assignment: %s", production.Name),
		Body:         fmt.Sprintf("You have been offered a %s slot on %s.", req.Role, production.Name),
	}
	if err := s.center.Create(ctx, n); err != nil {
		log.Printf("assignment: notify operator %s: %v", operatorUID, err)
	}
	return a, nil
}

// SetStatus lets the assigned operator accept or decline an offer. The
// production's requester is notified of the outcome.
func (s *assignmentService) SetStatus(ctx context.Context, id uuid.UUID, status string, byUID uuid.UUID) (*model.Assignment, error) {
	if status != model.AssignmentAccepted && status != model.AssignmentDeclined {
		return nil, errors.ErrInvalidStatusTransition
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAssignmentNotFound
		}
		return nil, err
	}
	if a.OperatorUID != byUID {
		return nil, errors.ErrNotOwner
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update assignment status: %w", err)
	}
	a.Status = status

	if production, err := s.productions.FindByID(ctx, a.ProductionID); err == nil && production.RequestedBy != uuid.Nil {
		n := &model.Notification{
			UserID:       production.RequestedBy,
			ProductionID: &production.ID,
			Type:         model.NotificationProductionStatus,
			Title:        fmt.Sprintf("Assignment %s on %s", status, production.Name),
			Body:         fmt.Sprintf("An operator has %s their assignment.", status),
		}
		if err := s.center.Create(ctx, n); err != nil {
			log.Printf("assignment: notify requester for %s: %v", production.ID, err)
		}
	}
	return a, nil
}

func (s *assignmentService) ListByOperator(ctx context.Context, operatorUID uuid.UUID) ([]model.Assignment, error) {
	return s.repo.ListByOperator(ctx, operatorUID)
}

// ListDetailsByProduction fires one profile lookup per assignment
// concurrently and joins on all. A missing profile leaves Operator nil
// rather than failing the whole list.
func (s *assignmentService) ListDetailsByProduction(ctx context.Context, productionID uuid.UUID) ([]AssignmentDetail, error) {
	assignments, err := s.repo.ListByProduction(ctx, productionID)
	if err != nil {
		return nil, err
	}

	details := make([]AssignmentDetail, len(assignments))
	g, gctx := errgroup.WithContext(ctx)
	for i := range assignments {
		i := i
		details[i].Assignment = assignments[i]
		g.Go(func() error {
			operator, err := s.users.FindByID(gctx, assignments[i].OperatorUID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil
				}
				return err
			}
			details[i].Operator = operator
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve operator profiles: %w", err)
	}
	return details, nil
}
