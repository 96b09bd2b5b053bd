package balance

import (
	"maps"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/sprintsense/balance-service/internal/domain"
)

// CalculateWorkload attributes every assigned item's hours to its assignee,
// scaled by the assignee's availability: a half-available member needs
// twice the wall-clock time to deliver the same work. Every member appears
// in the result. Unassigned items and items assigned outside the team are
// not counted.
func (a *Analyzer) CalculateWorkload(team []domain.TeamMemberCapacity, items []domain.WorkItemAssignment) domain.WorkloadDistribution {
	workload := make(domain.WorkloadDistribution, len(team))
	availability := make(map[uuid.UUID]float64, len(team))

	for _, member := range team {
		workload[member.UserID] = 0
		availability[member.UserID] = member.Availability
	}

	for _, item := range items {
		if item.AssignedTo == nil {
			continue
		}

		avail, ok := availability[*item.AssignedTo]
		if !ok || avail <= 0 {
			continue
		}

		workload[*item.AssignedTo] += item.EstimatedHours / avail
	}

	return workload
}

// BalanceScore maps the dispersion of the workload to [0, 1], where 1 is a
// perfectly even split. It is 1 - CV, with CV the sample coefficient of
// variation, floored at 0. An empty or idle team is balanced.
func (a *Analyzer) BalanceScore(workload domain.WorkloadDistribution) float64 {
	if len(workload) == 0 {
		return 1.0
	}

	// Sorted so floating point sums do not depend on map order.
	values := slices.Sorted(maps.Values(workload))
	if values[0] == values[len(values)-1] {
		return 1.0
	}

	avg := sum(values) / float64(len(values))
	if avg <= 0 {
		return 1.0
	}

	score := 1.0 - sampleStdDev(values, avg)/avg

	return clamp01(score)
}

// TeamUtilization is the share of the team's nominal capacity taken by the
// workload, capped at 1.
func (a *Analyzer) TeamUtilization(workload domain.WorkloadDistribution) float64 {
	if len(workload) == 0 {
		return 0.0
	}

	capacity := float64(len(workload)) * a.thresholds.NominalCapacityHours

	return clamp01(workload.Total() / capacity)
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}

	return total
}

// sampleStdDev is zero for fewer than two values.
func sampleStdDev(values []float64, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sq float64
	for _, v := range values {
		d := v - avg
		sq += d * d
	}

	return math.Sqrt(sq / float64(len(values)-1))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
