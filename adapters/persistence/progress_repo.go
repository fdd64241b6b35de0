package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/studyplan/internal/domain/progress"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type postgresProgressRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProgressRepo(db *pgxpool.Pool, logger logger.Logger) progress.Repository {
	return &postgresProgressRepo{db: db, logger: logger}
}

const entryColumns = "id, user_id, roadmap_id, roadmap_topic_id, week_number, hours_studied, completion_percentage, notes, completed_at, created_at, updated_at"

const weeklyColumns = "id, user_id, roadmap_id, week_number, week_start_date, total_hours_studied, topics_completed, notes, created_at, updated_at"

func scanEntry(row pgx.Row, extra ...any) (*progress.Entry, error) {
	e := &progress.Entry{}
	dest := []any{&e.ID, &e.UserID, &e.RoadmapID, &e.TopicID, &e.WeekNumber, &e.HoursStudied,
		&e.CompletionPercentage, &e.Notes, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return e, nil
}

func scanWeekly(row pgx.Row) (*progress.Weekly, error) {
	w := &progress.Weekly{}
	err := row.Scan(&w.ID, &w.UserID, &w.RoadmapID, &w.WeekNumber, &w.WeekStartDate,
		&w.TotalHoursStudied, &w.TopicsCompleted, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// UpsertEntry keys on (user, topic, week). completed_at is stamped whenever the new
// percentage is 100 and otherwise keeps what the row already had.
func (r *postgresProgressRepo) UpsertEntry(ctx context.Context, e *progress.Entry) (*progress.Entry, error) {
	query := `
		INSERT INTO learning_progress (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, roadmap_topic_id, week_number) DO UPDATE SET
			roadmap_id = EXCLUDED.roadmap_id,
			hours_studied = EXCLUDED.hours_studied,
			completion_percentage = EXCLUDED.completion_percentage,
			notes = EXCLUDED.notes,
			completed_at = CASE
				WHEN EXCLUDED.completion_percentage = 100 THEN EXCLUDED.updated_at
				ELSE learning_progress.completed_at
			END,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + entryColumns
	completedAt := progress.MergeCompletedAt(nil, e.CompletionPercentage, e.UpdatedAt)

	stored, err := scanEntry(r.db.QueryRow(ctx, query,
		e.ID, e.UserID, e.RoadmapID, e.TopicID, e.WeekNumber, e.HoursStudied,
		e.CompletionPercentage, e.Notes, completedAt, e.CreatedAt, e.UpdatedAt,
	))
	if err != nil {
		return nil, apperror.NewInternal("failed to upsert progress entry", err)
	}
	stored.TopicName = e.TopicName
	return stored, nil
}

func (r *postgresProgressRepo) UpsertWeekly(ctx context.Context, w *progress.Weekly) (*progress.Weekly, error) {
	query := `
		INSERT INTO weekly_progress (` + weeklyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, roadmap_id, week_number) DO UPDATE SET
			week_start_date = EXCLUDED.week_start_date,
			total_hours_studied = EXCLUDED.total_hours_studied,
			topics_completed = EXCLUDED.topics_completed,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + weeklyColumns

	stored, err := scanWeekly(r.db.QueryRow(ctx, query,
		w.ID, w.UserID, w.RoadmapID, w.WeekNumber, w.WeekStartDate,
		w.TotalHoursStudied, w.TopicsCompleted, w.Notes, w.CreatedAt, w.UpdatedAt,
	))
	if err != nil {
		return nil, apperror.NewInternal("failed to upsert weekly progress", err)
	}
	return stored, nil
}

func (r *postgresProgressRepo) ListEntries(ctx context.Context, userID, roadmapID uuid.UUID, week *int) ([]*progress.Entry, error) {
	builder := psql.Select(
		"lp.id", "lp.user_id", "lp.roadmap_id", "lp.roadmap_topic_id", "lp.week_number", "lp.hours_studied",
		"lp.completion_percentage", "lp.notes", "lp.completed_at", "lp.created_at", "lp.updated_at", "rt.topic_name",
	).
		From("learning_progress lp").
		Join("roadmap_topics rt ON rt.id = lp.roadmap_topic_id").
		Where(sq.Eq{"lp.user_id": userID, "lp.roadmap_id": roadmapID}).
		OrderBy("rt.order_index", "lp.week_number")
	if week != nil {
		builder = builder.Where(sq.Eq{"lp.week_number": *week})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build progress query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list progress entries", err)
	}
	defer rows.Close()

	entries := make([]*progress.Entry, 0)
	for rows.Next() {
		var topicName string
		e, err := scanEntry(rows, &topicName)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan progress entry", err)
		}
		e.TopicName = topicName
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating progress entries", err)
	}
	return entries, nil
}

func (r *postgresProgressRepo) ListWeekly(ctx context.Context, userID, roadmapID uuid.UUID) ([]*progress.Weekly, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+weeklyColumns+` FROM weekly_progress WHERE user_id = $1 AND roadmap_id = $2 ORDER BY week_number`,
		userID, roadmapID)
	if err != nil {
		return nil, apperror.NewInternal("failed to list weekly progress", err)
	}
	defer rows.Close()

	list := make([]*progress.Weekly, 0)
	for rows.Next() {
		w, err := scanWeekly(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan weekly progress", err)
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating weekly progress", err)
	}
	return list, nil
}
