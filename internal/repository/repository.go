// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sprintsense/balance-service/internal/domain"
)

// SprintRepository reads the inputs of a sprint balance analysis.
type SprintRepository interface {
	// GetSprint retrieves a sprint by its ID.
	// It returns apperrors.ErrNotFound if the sprint does not exist.
	GetSprint(ctx context.Context, sprintID uuid.UUID) (*domain.Sprint, error)

	// ListTeamCapacity returns the capacity of every member of a team, ordered by user ID.
	// A team without members yields an empty slice, not an error.
	ListTeamCapacity(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMemberCapacity, error)

	// ListSprintWorkItems returns all work items planned for a sprint, ordered by work item ID.
	ListSprintWorkItems(ctx context.Context, sprintID uuid.UUID) ([]domain.WorkItemAssignment, error)
}

// HealthChecker reports whether the storage backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
