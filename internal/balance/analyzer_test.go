package balance

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintsense/balance-service/internal/apperrors"
	"github.com/sprintsense/balance-service/internal/domain"
	"github.com/sprintsense/balance-service/internal/validation"
)

func member(t *testing.T, availability float64, skills ...string) domain.TeamMemberCapacity {
	t.Helper()

	m, err := domain.NewTeamMemberCapacity(uuid.New(), availability, skills, "UTC")
	require.NoError(t, err)

	return m
}

func item(t *testing.T, points int, hours float64, assignee *uuid.UUID, skills ...string) domain.WorkItemAssignment {
	t.Helper()

	w, err := domain.NewWorkItemAssignment(uuid.New(), points, skills, assignee, hours)
	require.NoError(t, err)

	return w
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

// twoMemberFixture is a full-time backend developer and a half-time
// frontend developer, each with one assigned item.
func twoMemberFixture(t *testing.T) ([]domain.TeamMemberCapacity, []domain.WorkItemAssignment) {
	t.Helper()

	alice := member(t, 1.0, "python", "sql")
	bob := member(t, 0.5, "react", "typescript")

	items := []domain.WorkItemAssignment{
		item(t, 5, 8.0, ptr(alice.UserID), "python"),
		item(t, 3, 5.0, ptr(bob.UserID), "react"),
	}

	return []domain.TeamMemberCapacity{alice, bob}, items
}

func TestAnalyzer_CalculateWorkload(t *testing.T) {
	a := NewAnalyzer()
	team, items := twoMemberFixture(t)

	workload := a.CalculateWorkload(team, items)

	require.Len(t, workload, 2)
	assert.InDelta(t, 8.0, workload[team[0].UserID], 1e-9, "full-time member carries hours as estimated")
	assert.InDelta(t, 10.0, workload[team[1].UserID], 1e-9, "half-time member needs twice the time")
}

func TestAnalyzer_CalculateWorkload_EdgeCases(t *testing.T) {
	a := NewAnalyzer()
	alice := member(t, 1.0, "go")
	bob := member(t, 0.8, "go")
	stranger := uuid.New()

	items := []domain.WorkItemAssignment{
		item(t, 2, 6, nil, "go"),
		item(t, 1, 4, ptr(stranger), "go"),
		item(t, 1, 4, ptr(alice.UserID), "go"),
		item(t, 2, 8, ptr(alice.UserID), "go"),
	}

	workload := a.CalculateWorkload([]domain.TeamMemberCapacity{alice, bob}, items)

	require.Len(t, workload, 2, "every member appears, strangers do not")
	assert.InDelta(t, 12.0, workload[alice.UserID], 1e-9)
	assert.InDelta(t, 0.0, workload[bob.UserID], 1e-9, "idle member is still present")
	assert.NotContains(t, workload, stranger)
}

func TestAnalyzer_BalanceScore(t *testing.T) {
	a := NewAnalyzer()
	x, y, z := uuid.New(), uuid.New(), uuid.New()

	testCases := []struct {
		name     string
		workload domain.WorkloadDistribution
		min, max float64
	}{
		{name: "empty team is balanced", workload: domain.WorkloadDistribution{}, min: 1, max: 1},
		{name: "equal workloads", workload: domain.WorkloadDistribution{x: 10, y: 10}, min: 1, max: 1},
		{name: "single member", workload: domain.WorkloadDistribution{x: 33}, min: 1, max: 1},
		{name: "idle team", workload: domain.WorkloadDistribution{x: 0, y: 0}, min: 1, max: 1},
		{name: "repeating fraction", workload: domain.WorkloadDistribution{x: 25.0 / 3, y: 25.0 / 3, z: 25.0 / 3}, min: 1, max: 1},
		{name: "mild imbalance", workload: domain.WorkloadDistribution{x: 10, y: 15}, min: 0.6, max: 0.8},
		{name: "extreme imbalance floors at zero", workload: domain.WorkloadDistribution{x: 0, y: 0, z: 90}, min: 0, max: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score := a.BalanceScore(tc.workload)
			assert.GreaterOrEqual(t, score, tc.min)
			assert.LessOrEqual(t, score, tc.max)
		})
	}
}

func TestAnalyzer_BalanceScore_MonotonicInSpread(t *testing.T) {
	a := NewAnalyzer()
	x, y := uuid.New(), uuid.New()

	prev := 1.0
	for spread := 1.0; spread <= 20; spread++ {
		score := a.BalanceScore(domain.WorkloadDistribution{x: 20 - spread/2, y: 20 + spread/2})
		assert.Less(t, score, prev, "spread %v", spread)
		assert.GreaterOrEqual(t, score, 0.0)
		prev = score
	}
}

func TestAnalyzer_TeamUtilization(t *testing.T) {
	a := NewAnalyzer()
	x, y := uuid.New(), uuid.New()

	assert.Equal(t, 0.0, a.TeamUtilization(domain.WorkloadDistribution{}))
	assert.InDelta(t, 1.0, a.TeamUtilization(domain.WorkloadDistribution{x: 40, y: 40}), 1e-9)
	assert.InDelta(t, 0.5, a.TeamUtilization(domain.WorkloadDistribution{x: 20, y: 20}), 1e-9)
	assert.Equal(t, 1.0, a.TeamUtilization(domain.WorkloadDistribution{x: 60, y: 50}), "overload is capped")
}

func TestAnalyzer_TeamUtilization_CustomCapacity(t *testing.T) {
	th := DefaultThresholds()
	th.NominalCapacityHours = 30
	a := NewAnalyzer(WithThresholds(th))

	assert.InDelta(t, 0.5, a.TeamUtilization(domain.WorkloadDistribution{uuid.New(): 15}), 1e-9)
}

func TestAnalyzer_SkillCoverage(t *testing.T) {
	a := NewAnalyzer()
	team, items := twoMemberFixture(t)

	assert.Equal(t, 1.0, a.SkillCoverage(team, items))
	assert.Equal(t, 1.0, a.SkillCoverage(team, nil), "no requirements is fully covered")

	withGap := append(items, item(t, 2, 6, nil, "rust"))
	reduced := a.SkillCoverage(team, withGap)
	assert.Less(t, reduced, 1.0)
	assert.InDelta(t, 2.0/3.0, reduced, 1e-9)

	withSecondGap := append(withGap, item(t, 1, 2, nil, "kotlin"))
	assert.Less(t, a.SkillCoverage(team, withSecondGap), reduced)

	assert.Equal(t, []string{"kotlin", "rust"}, a.MissingSkills(team, withSecondGap))
	assert.Empty(t, a.MissingSkills(team, items))
}

func TestAnalyzer_SkillCoverage_CaseInsensitive(t *testing.T) {
	a := NewAnalyzer()
	team := []domain.TeamMemberCapacity{member(t, 1, "Python", "SQL")}
	items := []domain.WorkItemAssignment{item(t, 1, 4, nil, "python", " sql ")}

	assert.Equal(t, 1.0, a.SkillCoverage(team, items))
}

func TestAnalyzer_IdentifyBottlenecks(t *testing.T) {
	a := NewAnalyzer()
	x, y := uuid.New(), uuid.New()

	t.Run("overloaded member", func(t *testing.T) {
		bottlenecks := a.IdentifyBottlenecks(domain.WorkloadDistribution{x: 50, y: 20}, 1.0)
		require.Len(t, bottlenecks, 1)
		assert.Contains(t, bottlenecks[0], x.String())
	})

	t.Run("low skill coverage", func(t *testing.T) {
		bottlenecks := a.IdentifyBottlenecks(domain.WorkloadDistribution{}, 0.7)
		require.Len(t, bottlenecks, 1)
		assert.Contains(t, strings.ToLower(bottlenecks[0]), "skill coverage")
	})

	t.Run("exactly at threshold is not a bottleneck", func(t *testing.T) {
		assert.Empty(t, a.IdentifyBottlenecks(domain.WorkloadDistribution{x: 40, y: 40}, 0.8))
	})

	t.Run("members before skills, heaviest first", func(t *testing.T) {
		bottlenecks := a.IdentifyBottlenecks(domain.WorkloadDistribution{x: 45, y: 60}, 0.5)
		require.Len(t, bottlenecks, 3)
		assert.Contains(t, bottlenecks[0], y.String())
		assert.Contains(t, bottlenecks[1], x.String())
		assert.Contains(t, strings.ToLower(bottlenecks[2]), "skill coverage")
	})

	t.Run("healthy sprint returns empty non-nil slice", func(t *testing.T) {
		bottlenecks := a.IdentifyBottlenecks(domain.WorkloadDistribution{x: 10}, 1.0)
		assert.NotNil(t, bottlenecks)
		assert.Empty(t, bottlenecks)
	})
}

func TestAnalyzer_GenerateRecommendations(t *testing.T) {
	a := NewAnalyzer()
	x, y := uuid.New(), uuid.New()

	t.Run("no bottlenecks", func(t *testing.T) {
		recs := a.GenerateRecommendations(domain.WorkloadDistribution{x: 20, y: 20}, 1.0, nil)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "good")
	})

	t.Run("overload and skill gap", func(t *testing.T) {
		workload := domain.WorkloadDistribution{x: 50, y: 20}
		recs := a.GenerateRecommendations(workload, 0.7, []string{"overloaded", "skill coverage"})

		require.GreaterOrEqual(t, len(recs), 2)
		assert.True(t, containsSubstring(recs, "redistributing"), "recommendations: %v", recs)
		assert.True(t, containsSubstring(recs, "skills"), "recommendations: %v", recs)
		assert.True(t, containsSubstring(recs, y.String()), "spare capacity names the idle member")
	})

	t.Run("overload only still yields two actions", func(t *testing.T) {
		recs := a.GenerateRecommendations(domain.WorkloadDistribution{x: 50, y: 45}, 1.0, []string{"overloaded"})

		require.GreaterOrEqual(t, len(recs), 2)
		assert.True(t, containsSubstring(recs, "redistributing"))
		assert.False(t, containsSubstring(recs, "skills"))
		assert.True(t, containsSubstring(recs, "reducing the sprint scope"))
	})
}

func TestAnalyzer_Analyze(t *testing.T) {
	fixed := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	a := NewAnalyzer(WithClock(func() time.Time { return fixed }))
	team, items := twoMemberFixture(t)
	sprintID := uuid.New()

	metrics, err := a.Analyze(sprintID, team, items)
	require.NoError(t, err)

	assert.Equal(t, sprintID, metrics.SprintID)
	assert.Len(t, metrics.WorkloadDistribution, len(team))
	for _, v := range []float64{metrics.OverallBalanceScore, metrics.TeamUtilization, metrics.SkillCoverage} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	if len(metrics.Bottlenecks) > 0 {
		assert.NotEmpty(t, metrics.Recommendations)
	}
	assert.Equal(t, fixed, metrics.CalculatedAt)
	assert.InDelta(t, 18.0/80.0, metrics.TeamUtilization, 1e-9)
	assert.Equal(t, 1.0, metrics.SkillCoverage)
	assert.Empty(t, metrics.Bottlenecks)
	require.Len(t, metrics.Recommendations, 1)
	assert.Contains(t, metrics.Recommendations[0], "good")
}

func TestAnalyzer_Analyze_MissingSkillsInRecommendation(t *testing.T) {
	a := NewAnalyzer()
	team, items := twoMemberFixture(t)
	items = append(items, item(t, 2, 6, nil, "rust"), item(t, 2, 6, nil, "go"))

	metrics, err := a.Analyze(uuid.New(), team, items)
	require.NoError(t, err)

	require.NotEmpty(t, metrics.Bottlenecks)
	assert.True(t, containsSubstring(metrics.Recommendations, "missing skills: go, rust"), "%v", metrics.Recommendations)
}

func TestAnalyzer_Analyze_Errors(t *testing.T) {
	a := NewAnalyzer()
	team, items := twoMemberFixture(t)
	sprintID := uuid.New()

	t.Run("empty team", func(t *testing.T) {
		_, err := a.Analyze(sprintID, nil, items)
		require.Error(t, err)

		var analysisErr *apperrors.BalanceAnalysisError
		require.ErrorAs(t, err, &analysisErr)
		assert.Equal(t, sprintID.String(), analysisErr.SprintID)
		assert.ErrorIs(t, err, apperrors.ErrEmptyTeam)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		stray := append(items, item(t, 1, 2, ptr(uuid.New()), "python"))

		_, err := a.Analyze(sprintID, team, stray)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		var unknown *apperrors.UnknownAssigneeError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("duplicate member", func(t *testing.T) {
		_, err := a.Analyze(sprintID, append(team, team[0]), items)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("invalid member built without constructor", func(t *testing.T) {
		bad := domain.TeamMemberCapacity{UserID: uuid.New(), Availability: 0, Skills: []string{"go"}}

		_, err := a.Analyze(sprintID, []domain.TeamMemberCapacity{bad}, nil)
		require.Error(t, err)

		var verr *validation.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("invalid item built without constructor", func(t *testing.T) {
		bad := domain.WorkItemAssignment{WorkItemID: uuid.New(), StoryPoints: 1, RequiredSkills: []string{"go"}, EstimatedHours: 17}

		_, err := a.Analyze(sprintID, team, []domain.WorkItemAssignment{bad})
		require.Error(t, err)

		var verr *validation.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestAnalyzer_Analyze_Idempotent(t *testing.T) {
	a := NewAnalyzer()
	team, items := largeFixture(t, 12, 60)
	sprintID := uuid.New()

	first, err := a.Analyze(sprintID, team, items)
	require.NoError(t, err)

	second, err := a.Analyze(sprintID, team, items)
	require.NoError(t, err)

	second.CalculatedAt = first.CalculatedAt
	assert.Equal(t, first, second)
}

func TestAnalyzer_Analyze_Performance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	a := NewAnalyzer()
	team, items := largeFixture(t, 50, 200)

	start := time.Now()
	_, err := a.Analyze(uuid.New(), team, items)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	start = time.Now()

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := a.Analyze(uuid.New(), team, items); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	assert.Less(t, time.Since(start), 2*time.Second)
	for err := range errs {
		assert.NoError(t, err)
	}
}

// largeFixture builds n members and m items spread round-robin, with every
// fifth item unassigned.
func largeFixture(t *testing.T, n, m int) ([]domain.TeamMemberCapacity, []domain.WorkItemAssignment) {
	t.Helper()

	skills := []string{"go", "sql", "react", "devops", "qa"}
	team := make([]domain.TeamMemberCapacity, 0, n)

	for i := range n {
		availability := 0.5 + float64(i%6)*0.1
		team = append(team, member(t, availability, skills[i%len(skills)], skills[(i+1)%len(skills)]))
	}

	items := make([]domain.WorkItemAssignment, 0, m)
	for i := range m {
		var assignee *uuid.UUID
		if i%5 != 0 {
			assignee = ptr(team[i%n].UserID)
		}

		points := 1 + i%8
		items = append(items, item(t, points, float64(points)*2.5, assignee, skills[i%len(skills)]))
	}

	return team, items
}

func containsSubstring(messages []string, sub string) bool {
	for _, m := range messages {
		if strings.Contains(m, sub) {
			return true
		}
	}

	return false
}

func ExampleAnalyzer_BalanceScore() {
	a := NewAnalyzer()
	x, y := uuid.New(), uuid.New()

	fmt.Printf("%.2f\n", a.BalanceScore(domain.WorkloadDistribution{x: 10, y: 10}))
	fmt.Printf("%.2f\n", a.BalanceScore(domain.WorkloadDistribution{x: 10, y: 15}))
	// Output:
	// 1.00
	// 0.72
}
