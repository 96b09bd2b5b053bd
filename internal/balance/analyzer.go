// Package balance analyzes how evenly a sprint's work is spread across a
// team: workload per member, balance score, utilization, skill coverage,
// bottlenecks and recommendations.
//
// An Analyzer holds only its thresholds and is safe for concurrent use.
// Every method is a pure function of its arguments, so analyzing the same
// input twice yields identical metrics apart from CalculatedAt.
package balance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sprintsense/balance-service/internal/apperrors"
	"github.com/sprintsense/balance-service/internal/domain"
)

// Analyzer computes sprint balance metrics.
type Analyzer struct {
	thresholds Thresholds
	now        func() time.Time
}

// NewAnalyzer creates an Analyzer with default thresholds unless overridden.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Thresholds returns the limits the analyzer scores against.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Analyze validates the team and work items and computes the sprint's
// balance metrics.
//
// An empty team yields a *apperrors.BalanceAnalysisError. Invalid members
// or items yield a *validation.ValidationError, and an item assigned to
// someone outside the team yields a *apperrors.UnknownAssigneeError.
func (a *Analyzer) Analyze(
	sprintID uuid.UUID,
	team []domain.TeamMemberCapacity,
	items []domain.WorkItemAssignment,
) (*domain.BalanceMetrics, error) {
	if len(team) == 0 {
		return nil, &apperrors.BalanceAnalysisError{
			SprintID: sprintLabel(sprintID),
			Reason:   apperrors.ErrEmptyTeam,
		}
	}

	if err := a.checkInputs(team, items); err != nil {
		return nil, err
	}

	workload := a.CalculateWorkload(team, items)
	coverage := a.SkillCoverage(team, items)
	bottlenecks := a.IdentifyBottlenecks(workload, coverage)

	var missing []string
	if a.lowCoverage(coverage) {
		missing = a.MissingSkills(team, items)
	}

	return &domain.BalanceMetrics{
		SprintID:             sprintID,
		OverallBalanceScore:  a.BalanceScore(workload),
		TeamUtilization:      a.TeamUtilization(workload),
		SkillCoverage:        coverage,
		WorkloadDistribution: workload,
		Bottlenecks:          bottlenecks,
		Recommendations:      a.recommend(workload, coverage, bottlenecks, missing),
		CalculatedAt:         a.now().UTC(),
	}, nil
}

func (a *Analyzer) checkInputs(team []domain.TeamMemberCapacity, items []domain.WorkItemAssignment) error {
	members := make(map[uuid.UUID]struct{}, len(team))

	for i, member := range team {
		if err := member.Validate(); err != nil {
			return fmt.Errorf("team member %d: %w", i, err)
		}

		if _, dup := members[member.UserID]; dup {
			return fmt.Errorf("%w: team member '%s' appears more than once", apperrors.ErrValidation, member.UserID)
		}

		members[member.UserID] = struct{}{}
	}

	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("work item %d: %w", i, err)
		}

		if item.AssignedTo == nil {
			continue
		}

		if _, ok := members[*item.AssignedTo]; !ok {
			return &apperrors.UnknownAssigneeError{
				WorkItemID: item.WorkItemID.String(),
				AssigneeID: item.AssignedTo.String(),
			}
		}
	}

	return nil
}

func sprintLabel(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}

	return id.String()
}
