package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"crewcall/internal/model"
)

// MockProductionRepository is a mock implementation of ProductionRepository.
type MockProductionRepository struct {
	mock.Mock
}

func (m *MockProductionRepository) Create(ctx context.Context, p *model.Production) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Production, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Production), args.Error(1)
}

func (m *MockProductionRepository) List(ctx context.Context) ([]model.Production, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Production), args.Error(1)
}

func (m *MockProductionRepository) ListByStatus(ctx context.Context, status string) ([]model.Production, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Production), args.Error(1)
}

func (m *MockProductionRepository) ListStartingBetween(ctx context.Context, from, until time.Time, statuses []string) ([]model.Production, error) {
	args := m.Called(ctx, from, until, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Production), args.Error(1)
}

func (m *MockProductionRepository) Update(ctx context.Context, p *model.Production) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockProductionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository.
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListByProduction(ctx context.Context, productionID uuid.UUID) ([]model.Assignment, error) {
	args := m.Called(ctx, productionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListByOperator(ctx context.Context, operatorUID uuid.UUID) ([]model.Assignment, error) {
	args := m.Called(ctx, operatorUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestSweepOnce(t *testing.T) {
	now := time.Now()
	lookahead := 2 * time.Hour

	production := *testProduction(now.Add(90 * time.Minute))
	accepted := uuid.New()
	declined := uuid.New()

	productions := new(MockProductionRepository)
	assignments := new(MockAssignmentRepository)

	productions.On("ListStartingBetween", mock.Anything, now, now.Add(lookahead),
		[]string{model.StatusConfirmed, model.StatusInProgress}).
		Return([]model.Production{production}, nil)
	assignments.On("ListByProduction", mock.Anything, production.ID).
		Return([]model.Assignment{
			{ID: uuid.New(), ProductionID: production.ID, OperatorUID: accepted, Status: model.AssignmentAccepted},
			{ID: uuid.New(), ProductionID: production.ID, OperatorUID: declined, Status: model.AssignmentDeclined},
		}, nil)

	s, _, _ := newTestScheduler()
	defer s.Close()

	n, err := sweepOnce(context.Background(), s, productions, assignments, now, lookahead)

	assert.NoError(t, err)
	// 90 minutes out: the 60, 30 and 10 minute offsets are all ahead.
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, s.Pending())
	productions.AssertExpectations(t)
	assignments.AssertExpectations(t)
}

func TestSweepOnce_SkipsFullyDeclinedProductions(t *testing.T) {
	now := time.Now()
	lookahead := time.Hour

	production := *testProduction(now.Add(45 * time.Minute))

	productions := new(MockProductionRepository)
	assignments := new(MockAssignmentRepository)

	productions.On("ListStartingBetween", mock.Anything, now, now.Add(lookahead), mock.Anything).
		Return([]model.Production{production}, nil)
	assignments.On("ListByProduction", mock.Anything, production.ID).
		Return([]model.Assignment{
			{ID: uuid.New(), ProductionID: production.ID, OperatorUID: uuid.New(), Status: model.AssignmentDeclined},
		}, nil)

	s, _, _ := newTestScheduler()
	defer s.Close()

	n, err := sweepOnce(context.Background(), s, productions, assignments, now, lookahead)

	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, s.Pending())
}

func TestSweepOnce_IdempotentAcrossTicks(t *testing.T) {
	now := time.Now()
	lookahead := 2 * time.Hour

	production := *testProduction(now.Add(90 * time.Minute))
	operator := uuid.New()

	productions := new(MockProductionRepository)
	assignments := new(MockAssignmentRepository)

	productions.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Production{production}, nil)
	assignments.On("ListByProduction", mock.Anything, production.ID).
		Return([]model.Assignment{
			{ID: uuid.New(), ProductionID: production.ID, OperatorUID: operator, Status: model.AssignmentAccepted},
		}, nil)

	s, _, _ := newTestScheduler()
	defer s.Close()

	first, err := sweepOnce(context.Background(), s, productions, assignments, now, lookahead)
	assert.NoError(t, err)
	assert.Equal(t, 3, first)

	second, err := sweepOnce(context.Background(), s, productions, assignments, now.Add(time.Minute), lookahead)
	assert.NoError(t, err)
	assert.Equal(t, 0, second)
	assert.Equal(t, 3, s.Pending())
}
