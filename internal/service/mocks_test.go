package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sprintsense/balance-service/internal/domain"
	"github.com/sprintsense/balance-service/internal/repository"
)

type SprintRepositoryMock struct {
	mock.Mock
}

var _ repository.SprintRepository = (*SprintRepositoryMock)(nil)

func (m *SprintRepositoryMock) GetSprint(ctx context.Context, sprintID uuid.UUID) (*domain.Sprint, error) {
	args := m.Called(ctx, sprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Sprint), args.Error(1)
}

func (m *SprintRepositoryMock) ListTeamCapacity(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMemberCapacity, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.TeamMemberCapacity), args.Error(1)
}

func (m *SprintRepositoryMock) ListSprintWorkItems(ctx context.Context, sprintID uuid.UUID) ([]domain.WorkItemAssignment, error) {
	args := m.Called(ctx, sprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.WorkItemAssignment), args.Error(1)
}

type MetricsCacheMock struct {
	mock.Mock
}

var _ MetricsCache = (*MetricsCacheMock)(nil)

func (m *MetricsCacheMock) Get(sprintID uuid.UUID) (*domain.BalanceMetrics, bool) {
	args := m.Called(sprintID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}

	return args.Get(0).(*domain.BalanceMetrics), args.Bool(1)
}

func (m *MetricsCacheMock) Set(sprintID uuid.UUID, metrics *domain.BalanceMetrics) {
	m.Called(sprintID, metrics)
}

func (m *MetricsCacheMock) Invalidate(sprintID uuid.UUID) bool {
	return m.Called(sprintID).Bool(0)
}
