package http

import (
	"github.com/google/uuid"

	"github.com/sprintsense/balance-service/internal/domain"
)

type analyzeRequest struct {
	SprintID     uuid.UUID                   `json:"sprint_id"`
	TeamCapacity []domain.TeamMemberCapacity `json:"team_capacity" validate:"max=500,dive"`
	WorkItems    []domain.WorkItemAssignment `json:"work_items" validate:"max=5000,dive"`
}
