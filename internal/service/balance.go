package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sprintsense/balance-service/internal/domain"
	"github.com/sprintsense/balance-service/internal/repository"
	"github.com/sprintsense/balance-service/pkg/logger/sl"
)

type BalanceService interface {
	GetSprintBalance(ctx context.Context, sprintID uuid.UUID) (*domain.BalanceMetrics, error)
	RefreshSprintBalance(ctx context.Context, sprintID uuid.UUID) (*domain.BalanceMetrics, error)
	AnalyzeBalance(
		ctx context.Context,
		sprintID uuid.UUID,
		team []domain.TeamMemberCapacity,
		items []domain.WorkItemAssignment,
	) (*domain.BalanceMetrics, error)
}

// Analyzer computes metrics from already loaded sprint data.
type Analyzer interface {
	Analyze(sprintID uuid.UUID, team []domain.TeamMemberCapacity, items []domain.WorkItemAssignment) (*domain.BalanceMetrics, error)
}

// MetricsCache stores computed metrics per sprint.
type MetricsCache interface {
	Get(sprintID uuid.UUID) (*domain.BalanceMetrics, bool)
	Set(sprintID uuid.UUID, metrics *domain.BalanceMetrics)
	Invalidate(sprintID uuid.UUID) bool
}

type BalanceServiceImpl struct {
	log      *slog.Logger
	repo     repository.SprintRepository
	analyzer Analyzer
	cache    MetricsCache
}

// NewBalanceService wires the service. A nil cache disables caching.
func NewBalanceService(
	log *slog.Logger,
	repo repository.SprintRepository,
	analyzer Analyzer,
	cache MetricsCache,
) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		log:      log,
		repo:     repo,
		analyzer: analyzer,
		cache:    cache,
	}
}

func (s *BalanceServiceImpl) GetSprintBalance(ctx context.Context, sprintID uuid.UUID) (*domain.BalanceMetrics, error) {
	const op = "internal.service.balance.GetSprintBalance"
	log := s.log.With(slog.String("op", op), slog.String("sprint_id", sprintID.String()))

	if s.cache != nil {
		if metrics, ok := s.cache.Get(sprintID); ok {
			cacheLookups.WithLabelValues("hit").Inc()
			log.Debug("balance served from cache")

			return metrics, nil
		}

		cacheLookups.WithLabelValues("miss").Inc()
	}

	return s.compute(ctx, log, op, sprintID)
}

func (s *BalanceServiceImpl) RefreshSprintBalance(ctx context.Context, sprintID uuid.UUID) (*domain.BalanceMetrics, error) {
	const op = "internal.service.balance.RefreshSprintBalance"
	log := s.log.With(slog.String("op", op), slog.String("sprint_id", sprintID.String()))

	if s.cache != nil && s.cache.Invalidate(sprintID) {
		log.Debug("cached balance invalidated")
	}

	return s.compute(ctx, log, op, sprintID)
}

func (s *BalanceServiceImpl) AnalyzeBalance(
	_ context.Context,
	sprintID uuid.UUID,
	team []domain.TeamMemberCapacity,
	items []domain.WorkItemAssignment,
) (*domain.BalanceMetrics, error) {
	const op = "internal.service.balance.AnalyzeBalance"
	log := s.log.With(slog.String("op", op), slog.Int("members", len(team)), slog.Int("items", len(items)))

	metrics, err := s.analyze(sourceAdHoc, sprintID, team, items)
	if err != nil {
		log.Warn("ad hoc analysis rejected", sl.Err(err))
		return nil, err
	}

	log.Info("ad hoc balance analyzed", slog.Float64("balance_score", metrics.OverallBalanceScore))

	return metrics, nil
}

func (s *BalanceServiceImpl) compute(ctx context.Context, log *slog.Logger, op string, sprintID uuid.UUID) (*domain.BalanceMetrics, error) {
	sprint, err := s.repo.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		team  []domain.TeamMemberCapacity
		items []domain.WorkItemAssignment
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		team, err = s.repo.ListTeamCapacity(gctx, sprint.TeamID)
		return err
	})

	g.Go(func() error {
		var err error
		items, err = s.repo.ListSprintWorkItems(gctx, sprintID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: failed to load sprint data: %w", op, err)
	}

	metrics, err := s.analyze(sourceSprint, sprintID, team, items)
	if err != nil {
		log.Warn("sprint balance analysis failed", sl.Err(err))
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(sprintID, metrics)
	}

	log.Info("sprint balance analyzed",
		slog.Float64("balance_score", metrics.OverallBalanceScore),
		slog.Int("bottlenecks", len(metrics.Bottlenecks)),
	)

	return metrics, nil
}

func (s *BalanceServiceImpl) analyze(
	source string,
	sprintID uuid.UUID,
	team []domain.TeamMemberCapacity,
	items []domain.WorkItemAssignment,
) (*domain.BalanceMetrics, error) {
	start := time.Now()
	metrics, err := s.analyzer.Analyze(sprintID, team, items)
	analysisDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	analysisTotal.WithLabelValues(source, outcome).Inc()

	return metrics, err
}
