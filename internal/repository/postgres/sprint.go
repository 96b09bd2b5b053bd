package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sprintsense/balance-service/internal/apperrors"
	"github.com/sprintsense/balance-service/internal/domain"
)

type SprintRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewSprintRepository(db *sqlx.DB, log *slog.Logger) *SprintRepository {
	return &SprintRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type capacityRow struct {
	UserID       uuid.UUID      `db:"user_id"`
	Availability float64        `db:"availability"`
	Skills       pq.StringArray `db:"skills"`
	TimeZone     string         `db:"time_zone"`
}

type workItemRow struct {
	ID             uuid.UUID      `db:"id"`
	StoryPoints    int            `db:"story_points"`
	RequiredSkills pq.StringArray `db:"required_skills"`
	AssignedTo     uuid.NullUUID  `db:"assigned_to"`
	EstimatedHours float64        `db:"estimated_hours"`
}

func (sr *SprintRepository) GetSprint(ctx context.Context, sprintID uuid.UUID) (*domain.Sprint, error) {
	const op = "internal.repository.postgres.GetSprint"
	log := sr.log.With(slog.String("op", op), slog.String("sprint_id", sprintID.String()))

	query, args, err := sr.sq.Select("id", "team_id", "name", "starts_at", "ends_at").
		From("sprints").
		Where(sq.Eq{"id": sprintID.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select sprint query: %w", err)
	}

	var sprint domain.Sprint
	if err := sr.db.GetContext(ctx, &sprint, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: sprint with id '%s'", apperrors.ErrNotFound, sprintID)
		}

		return nil, fmt.Errorf("failed to get sprint: %w", err)
	}

	log.Debug("sprint loaded", slog.String("team_id", sprint.TeamID.String()))

	return &sprint, nil
}

func (sr *SprintRepository) ListTeamCapacity(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMemberCapacity, error) {
	const op = "internal.repository.postgres.ListTeamCapacity"
	log := sr.log.With(slog.String("op", op), slog.String("team_id", teamID.String()))

	query, args, err := sr.sq.Select("user_id", "availability", "skills", "time_zone").
		From("team_members").
		Where(sq.Eq{"team_id": teamID.String()}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select capacity query: %w", err)
	}

	var rows []capacityRow
	if err := sr.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get team capacity: %w", err)
	}

	team := make([]domain.TeamMemberCapacity, len(rows))
	for i, row := range rows {
		team[i] = domain.TeamMemberCapacity{
			UserID:       row.UserID,
			Availability: row.Availability,
			Skills:       []string(row.Skills),
			TimeZone:     row.TimeZone,
		}
	}

	log.Debug("team capacity loaded", slog.Int("members", len(team)))

	return team, nil
}

func (sr *SprintRepository) ListSprintWorkItems(ctx context.Context, sprintID uuid.UUID) ([]domain.WorkItemAssignment, error) {
	const op = "internal.repository.postgres.ListSprintWorkItems"
	log := sr.log.With(slog.String("op", op), slog.String("sprint_id", sprintID.String()))

	query, args, err := sr.sq.Select("id", "story_points", "required_skills", "assigned_to", "estimated_hours").
		From("work_items").
		Where(sq.Eq{"sprint_id": sprintID.String()}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select work items query: %w", err)
	}

	var rows []workItemRow
	if err := sr.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get sprint work items: %w", err)
	}

	items := make([]domain.WorkItemAssignment, len(rows))
	for i, row := range rows {
		items[i] = domain.WorkItemAssignment{
			WorkItemID:     row.ID,
			StoryPoints:    row.StoryPoints,
			RequiredSkills: []string(row.RequiredSkills),
			EstimatedHours: row.EstimatedHours,
		}

		if row.AssignedTo.Valid {
			assignee := row.AssignedTo.UUID
			items[i].AssignedTo = &assignee
		}
	}

	log.Debug("sprint work items loaded", slog.Int("items", len(items)))

	return items, nil
}
