package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sprintsense/balance-service/internal/apperrors"
	"github.com/sprintsense/balance-service/internal/balance"
	"github.com/sprintsense/balance-service/internal/domain"
	"github.com/sprintsense/balance-service/internal/validation"
	"github.com/sprintsense/balance-service/pkg/logger/sl"
)

type sprintPlan struct {
	SprintID     uuid.UUID                   `json:"sprint_id"`
	TeamCapacity []domain.TeamMemberCapacity `json:"team_capacity" validate:"dive"`
	WorkItems    []domain.WorkItemAssignment `json:"work_items" validate:"dive"`
}

type analyzeOptions struct {
	input      string
	asJSON     bool
	thresholds balance.Thresholds
}

func newAnalyzeCommand(newLogger func(*cobra.Command) *slog.Logger) *cobra.Command {
	opts := analyzeOptions{thresholds: balance.DefaultThresholds()}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a sprint plan file",
		Example: `  balancectl analyze --input plan.json
  cat plan.json | balancectl analyze --input - --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, newLogger(cmd), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", `sprint plan JSON file, or "-" for stdin`)
	flags.BoolVar(&opts.asJSON, "json", false, "print metrics as JSON even on a terminal")
	flags.Float64Var(&opts.thresholds.OverloadHours, "overload-hours", opts.thresholds.OverloadHours,
		"effective hours above which a member is overloaded")
	flags.Float64Var(&opts.thresholds.NominalCapacityHours, "nominal-hours", opts.thresholds.NominalCapacityHours,
		"full-time sprint capacity of one member in hours")
	flags.Float64Var(&opts.thresholds.MinSkillCoverage, "min-coverage", opts.thresholds.MinSkillCoverage,
		"skill coverage ratio below which skills are a bottleneck")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(cmd *cobra.Command, log *slog.Logger, opts analyzeOptions) error {
	if err := opts.thresholds.Validate(); err != nil {
		return err
	}

	plan, err := readPlan(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}

	log.Debug("sprint plan loaded",
		slog.String("input", opts.input),
		slog.Int("members", len(plan.TeamCapacity)),
		slog.Int("items", len(plan.WorkItems)),
	)

	analyzer := balance.NewAnalyzer(balance.WithThresholds(opts.thresholds))

	metrics, err := analyzer.Analyze(plan.SprintID, plan.TeamCapacity, plan.WorkItems)
	if err != nil {
		log.Debug("analysis rejected", sl.Err(err))
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON || !isTerminal(out) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(metrics)
	}

	return printSummary(out, metrics)
}

func readPlan(stdin io.Reader, path string) (*sprintPlan, error) {
	var r io.Reader = stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open plan: %w", err)
		}
		defer f.Close()

		r = f
	}

	var plan sprintPlan
	if err := json.NewDecoder(r).Decode(&plan); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	if err := validation.ValidateStruct(&plan); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	return &plan, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printSummary(w io.Writer, m *domain.BalanceMetrics) error {
	var b strings.Builder

	if m.SprintID != uuid.Nil {
		fmt.Fprintf(&b, "Sprint %s\n", m.SprintID)
	}

	fmt.Fprintf(&b, "Balance score:    %.2f\n", m.OverallBalanceScore)
	fmt.Fprintf(&b, "Team utilization: %.0f%%\n", m.TeamUtilization*100)
	fmt.Fprintf(&b, "Skill coverage:   %.0f%%\n", m.SkillCoverage*100)

	b.WriteString("\nWorkload (effective hours):\n")

	ids := make([]uuid.UUID, 0, len(m.WorkloadDistribution))
	for id := range m.WorkloadDistribution {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		wi, wj := m.WorkloadDistribution[ids[i]], m.WorkloadDistribution[ids[j]]
		if wi != wj {
			return wi > wj
		}

		return ids[i].String() < ids[j].String()
	})

	for _, id := range ids {
		fmt.Fprintf(&b, "  %s  %6.1f\n", id, m.WorkloadDistribution[id])
	}

	if len(m.Bottlenecks) > 0 {
		b.WriteString("\nBottlenecks:\n")
		for _, s := range m.Bottlenecks {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	b.WriteString("\nRecommendations:\n")
	for _, s := range m.Recommendations {
		fmt.Fprintf(&b, "  - %s\n", s)
	}

	_, err := io.WriteString(w, b.String())

	return err
}
