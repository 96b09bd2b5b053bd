package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sprintsense/balance-service/internal/validation"
)

// MaxHoursPerStoryPoint bounds the effort a single story point may carry.
// It mirrors the hours_per_point tag on WorkItemAssignment.
const MaxHoursPerStoryPoint = 16

// TeamMemberCapacity describes how much of a member's nominal week is
// available for sprint work and which skills they bring.
type TeamMemberCapacity struct {
	UserID       uuid.UUID `json:"user_id" validate:"required"`
	Availability float64   `json:"availability" validate:"gt=0,lte=1"`
	Skills       []string  `json:"skills" validate:"required,min=1,dive,skill"`
	TimeZone     string    `json:"time_zone" validate:"max=64"`
}

// NewTeamMemberCapacity builds a validated capacity entry. Skills are
// copied so the caller keeps no handle on the stored slice.
func NewTeamMemberCapacity(userID uuid.UUID, availability float64, skills []string, timeZone string) (TeamMemberCapacity, error) {
	c := TeamMemberCapacity{
		UserID:       userID,
		Availability: availability,
		Skills:       append([]string(nil), skills...),
		TimeZone:     timeZone,
	}

	if err := c.Validate(); err != nil {
		return TeamMemberCapacity{}, err
	}

	return c, nil
}

// Validate checks the capacity invariants.
func (c TeamMemberCapacity) Validate() error {
	return validation.ValidateStruct(c)
}

// WorkItemAssignment is a sprint work item with its effort estimate and
// optional assignee.
type WorkItemAssignment struct {
	WorkItemID     uuid.UUID  `json:"work_item_id" validate:"required"`
	StoryPoints    int        `json:"story_points" validate:"gte=0"`
	RequiredSkills []string   `json:"required_skills" validate:"required,min=1,dive,skill"`
	AssignedTo     *uuid.UUID `json:"assigned_to,omitempty"`
	EstimatedHours float64    `json:"estimated_hours" validate:"gte=0,hours_per_point=16"`
}

// NewWorkItemAssignment builds a validated work item. A nil assignedTo
// leaves the item unassigned.
func NewWorkItemAssignment(
	workItemID uuid.UUID,
	storyPoints int,
	requiredSkills []string,
	assignedTo *uuid.UUID,
	estimatedHours float64,
) (WorkItemAssignment, error) {
	w := WorkItemAssignment{
		WorkItemID:     workItemID,
		StoryPoints:    storyPoints,
		RequiredSkills: append([]string(nil), requiredSkills...),
		EstimatedHours: estimatedHours,
	}

	if assignedTo != nil {
		id := *assignedTo
		w.AssignedTo = &id
	}

	if err := w.Validate(); err != nil {
		return WorkItemAssignment{}, err
	}

	return w, nil
}

// Validate checks the work item invariants.
func (w WorkItemAssignment) Validate() error {
	return validation.ValidateStruct(w)
}

// IsAssigned reports whether the item has an assignee.
func (w WorkItemAssignment) IsAssigned() bool {
	return w.AssignedTo != nil
}

// WorkloadDistribution maps a member id to effective hours of work.
type WorkloadDistribution map[uuid.UUID]float64

// Total returns the sum of all members' hours. Values are added in
// ascending order so the result does not depend on map iteration order.
func (w WorkloadDistribution) Total() float64 {
	var total float64
	for _, hours := range slices.Sorted(maps.Values(w)) {
		total += hours
	}

	return total
}

// BalanceMetrics is the result of one sprint balance analysis.
type BalanceMetrics struct {
	SprintID             uuid.UUID            `json:"sprint_id"`
	OverallBalanceScore  float64              `json:"overall_balance_score"`
	TeamUtilization      float64              `json:"team_utilization"`
	SkillCoverage        float64              `json:"skill_coverage"`
	WorkloadDistribution WorkloadDistribution `json:"workload_distribution"`
	Bottlenecks          []string             `json:"bottlenecks"`
	Recommendations      []string             `json:"recommendations"`
	CalculatedAt         time.Time            `json:"calculated_at"`
}

// Sprint is the time box whose work items are analyzed for one team.
type Sprint struct {
	ID       uuid.UUID `db:"id"`
	TeamID   uuid.UUID `db:"team_id"`
	Name     string    `db:"name"`
	StartsAt time.Time `db:"starts_at"`
	EndsAt   time.Time `db:"ends_at"`
}
