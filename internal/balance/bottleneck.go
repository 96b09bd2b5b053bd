package balance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/sprintsense/balance-service/internal/domain"
)

type memberHours struct {
	id    uuid.UUID
	hours float64
}

// IdentifyBottlenecks flags every member above the overload threshold, most
// loaded first, followed by a skill gap when coverage is below the minimum.
func (a *Analyzer) IdentifyBottlenecks(workload domain.WorkloadDistribution, skillCoverage float64) []string {
	bottlenecks := make([]string, 0)

	for _, m := range a.overloaded(workload) {
		bottlenecks = append(bottlenecks, fmt.Sprintf(
			"Team member %s is overloaded with %.1f hours (threshold %.1f hours)",
			m.id, m.hours, a.thresholds.OverloadHours,
		))
	}

	if a.lowCoverage(skillCoverage) {
		bottlenecks = append(bottlenecks, fmt.Sprintf(
			"Low skill coverage: only %.0f%% of required skills are available in the team (minimum %.0f%%)",
			skillCoverage*100, a.thresholds.MinSkillCoverage*100,
		))
	}

	return bottlenecks
}

// GenerateRecommendations turns bottlenecks into suggested actions. A
// healthy sprint gets a single confirmation; otherwise there is always a
// redistribution suggestion plus at least one more specific action.
func (a *Analyzer) GenerateRecommendations(workload domain.WorkloadDistribution, skillCoverage float64, bottlenecks []string) []string {
	return a.recommend(workload, skillCoverage, bottlenecks, nil)
}

func (a *Analyzer) recommend(
	workload domain.WorkloadDistribution,
	skillCoverage float64,
	bottlenecks []string,
	missingSkills []string,
) []string {
	if len(bottlenecks) == 0 {
		return []string{"Workload distribution looks good: no member is overloaded and required skills are covered"}
	}

	recommendations := make([]string, 0, 3)

	overloaded := a.overloaded(workload)
	if len(overloaded) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Consider redistributing work from overloaded members (%s) to teammates with spare capacity",
			joinIDs(overloaded),
		))
	} else {
		recommendations = append(recommendations,
			"Consider redistributing work items so each one is owned by someone holding the required skills")
	}

	if a.lowCoverage(skillCoverage) {
		msg := "Close skill gaps through training, pairing, or hiring for the skills the sprint requires"
		if len(missingSkills) > 0 {
			msg = fmt.Sprintf("%s; missing skills: %s", msg, strings.Join(missingSkills, ", "))
		}

		recommendations = append(recommendations, msg)
	}

	spare := a.spareCapacity(workload)
	switch {
	case len(spare) > 0:
		parts := make([]string, 0, len(spare))
		for _, m := range spare {
			parts = append(parts, fmt.Sprintf("%s (%.1f hours)", m.id, m.hours))
		}

		recommendations = append(recommendations,
			"Members with spare capacity: "+strings.Join(parts, ", "))
	case len(workload) > 0:
		recommendations = append(recommendations,
			"No member has spare capacity; consider reducing the sprint scope")
	default:
		recommendations = append(recommendations,
			"Review the sprint plan once team capacity is known")
	}

	return recommendations
}

func (a *Analyzer) lowCoverage(skillCoverage float64) bool {
	return skillCoverage < a.thresholds.MinSkillCoverage
}

// overloaded returns members above the overload threshold, heaviest first.
func (a *Analyzer) overloaded(workload domain.WorkloadDistribution) []memberHours {
	members := make([]memberHours, 0)
	for id, hours := range workload {
		if hours > a.thresholds.OverloadHours {
			members = append(members, memberHours{id: id, hours: hours})
		}
	}

	slices.SortFunc(members, func(x, y memberHours) int {
		if x.hours != y.hours {
			if x.hours > y.hours {
				return -1
			}

			return 1
		}

		return strings.Compare(x.id.String(), y.id.String())
	})

	return members
}

// spareCapacity returns members below nominal capacity, least loaded first.
func (a *Analyzer) spareCapacity(workload domain.WorkloadDistribution) []memberHours {
	members := make([]memberHours, 0)
	for id, hours := range workload {
		if hours < a.thresholds.NominalCapacityHours {
			members = append(members, memberHours{id: id, hours: hours})
		}
	}

	slices.SortFunc(members, func(x, y memberHours) int {
		if x.hours != y.hours {
			if x.hours < y.hours {
				return -1
			}

			return 1
		}

		return strings.Compare(x.id.String(), y.id.String())
	})

	return members
}

func joinIDs(members []memberHours) string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.id.String())
	}

	return strings.Join(ids, ", ")
}
