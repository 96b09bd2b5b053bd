package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sprintsense/balance-service/internal/domain"
	"github.com/sprintsense/balance-service/internal/repository"
	"github.com/sprintsense/balance-service/internal/service"
)

type BalanceServiceMock struct {
	mock.Mock
}

var _ service.BalanceService = (*BalanceServiceMock)(nil)

func (m *BalanceServiceMock) GetSprintBalance(ctx context.Context, sprintID uuid.UUID) (*domain.BalanceMetrics, error) {
	args := m.Called(ctx, sprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BalanceMetrics), args.Error(1)
}

func (m *BalanceServiceMock) RefreshSprintBalance(ctx context.Context, sprintID uuid.UUID) (*domain.BalanceMetrics, error) {
	args := m.Called(ctx, sprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BalanceMetrics), args.Error(1)
}

func (m *BalanceServiceMock) AnalyzeBalance(
	ctx context.Context,
	sprintID uuid.UUID,
	team []domain.TeamMemberCapacity,
	items []domain.WorkItemAssignment,
) (*domain.BalanceMetrics, error) {
	args := m.Called(ctx, sprintID, team, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BalanceMetrics), args.Error(1)
}

type HealthCheckerMock struct {
	mock.Mock
}

var _ repository.HealthChecker = (*HealthCheckerMock)(nil)

func (m *HealthCheckerMock) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
