package balance

import (
	"slices"
	"strings"

	"github.com/sprintsense/balance-service/internal/domain"
)

// SkillCoverage is the fraction of distinct skills required by the work
// items that at least one team member holds. Work that requires nothing is
// fully covered. Tags are compared case-insensitively.
func (a *Analyzer) SkillCoverage(team []domain.TeamMemberCapacity, items []domain.WorkItemAssignment) float64 {
	required := requiredSkills(items)
	if len(required) == 0 {
		return 1.0
	}

	available := teamSkills(team)

	var covered int
	for skill := range required {
		if _, ok := available[skill]; ok {
			covered++
		}
	}

	return float64(covered) / float64(len(required))
}

// MissingSkills lists, sorted, the required skills nobody on the team has.
func (a *Analyzer) MissingSkills(team []domain.TeamMemberCapacity, items []domain.WorkItemAssignment) []string {
	available := teamSkills(team)
	missing := make([]string, 0)

	for skill := range requiredSkills(items) {
		if _, ok := available[skill]; !ok {
			missing = append(missing, skill)
		}
	}

	slices.Sort(missing)

	return missing
}

func teamSkills(team []domain.TeamMemberCapacity) map[string]struct{} {
	set := make(map[string]struct{})
	for _, member := range team {
		for _, s := range member.Skills {
			set[normalizeSkill(s)] = struct{}{}
		}
	}

	return set
}

func requiredSkills(items []domain.WorkItemAssignment) map[string]struct{} {
	set := make(map[string]struct{})
	for _, item := range items {
		for _, s := range item.RequiredSkills {
			if skill := normalizeSkill(s); skill != "" {
				set[skill] = struct{}{}
			}
		}
	}

	return set
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
