package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type postgresRoadmapRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresRoadmapRepo(db *pgxpool.Pool, logger logger.Logger) roadmap.Repository {
	return &postgresRoadmapRepo{db: db, logger: logger}
}

const roadmapColumns = "r.id, r.user_id, r.title, r.description, r.roadmap_data, r.estimated_duration_weeks, r.created_at"

const topicColumns = "id, roadmap_id, topic_name, description, order_index, estimated_hours, prerequisites, learning_objectives"

func scanRoadmap(row pgx.Row) (*roadmap.Roadmap, error) {
	rm := &roadmap.Roadmap{}
	err := row.Scan(&rm.ID, &rm.OwnerID, &rm.Title, &rm.Description, &rm.RawPayload, &rm.EstimatedDurationWeeks, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roadmap.ErrRoadmapNotFound
		}
		return nil, apperror.NewInternal("failed to scan roadmap row", err)
	}
	return rm, nil
}

func scanTopic(row pgx.Row) (*roadmap.Topic, error) {
	t := &roadmap.Topic{}
	err := row.Scan(&t.ID, &t.RoadmapID, &t.Name, &t.Description, &t.OrderIndex, &t.EstimatedHours, &t.Prerequisites, &t.LearningObjectives)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roadmap.ErrTopicNotFound
		}
		return nil, apperror.NewInternal("failed to scan topic row", err)
	}
	return t, nil
}

// Create writes the roadmap and its topics in one transaction.
func (r *postgresRoadmapRepo) Create(ctx context.Context, rm *roadmap.Roadmap) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO roadmaps (id, user_id, title, description, roadmap_data, estimated_duration_weeks, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rm.ID, rm.OwnerID, rm.Title, rm.Description, rm.RawPayload, rm.EstimatedDurationWeeks, rm.CreatedAt,
		)
		if err != nil {
			return err
		}

		rows := make([][]any, len(rm.Topics))
		for i, t := range rm.Topics {
			rows[i] = []any{t.ID, rm.ID, t.Name, t.Description, t.OrderIndex, t.EstimatedHours, nonNil(t.Prerequisites), nonNil(t.LearningObjectives)}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"roadmap_topics"},
			[]string{"id", "roadmap_id", "topic_name", "description", "order_index", "estimated_hours", "prerequisites", "learning_objectives"},
			pgx.CopyFromRows(rows),
		)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to save roadmap", err, zap.String("roadmap_id", rm.ID.String()))
		return apperror.NewInternal("failed to save roadmap", err)
	}
	return nil
}

func (r *postgresRoadmapRepo) FindByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*roadmap.Roadmap, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roadmapColumns+` FROM roadmaps r WHERE r.id = $1 AND r.user_id = $2`, id, ownerID)
	rm, err := scanRoadmap(row)
	if err != nil {
		return nil, err
	}
	if rm.Topics, err = r.topics(ctx, rm.ID); err != nil {
		return nil, err
	}
	return rm, nil
}

func (r *postgresRoadmapRepo) FindLatestByOwner(ctx context.Context, ownerID uuid.UUID) (*roadmap.Roadmap, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roadmapColumns+` FROM roadmaps r WHERE r.user_id = $1 ORDER BY r.created_at DESC LIMIT 1`, ownerID)
	rm, err := scanRoadmap(row)
	if err != nil {
		return nil, err
	}
	if rm.Topics, err = r.topics(ctx, rm.ID); err != nil {
		return nil, err
	}
	return rm, nil
}

func (r *postgresRoadmapRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*roadmap.Summary, error) {
	builder := psql.Select(roadmapColumns, "(SELECT COUNT(*) FROM roadmap_topics rt WHERE rt.roadmap_id = r.id) AS topic_count").
		From("roadmaps r").
		Where("r.user_id = ?", ownerID).
		OrderBy("r.created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build roadmap list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list roadmaps", err)
	}
	defer rows.Close()

	list := make([]*roadmap.Summary, 0)
	for rows.Next() {
		s := &roadmap.Summary{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.RawPayload, &s.EstimatedDurationWeeks, &s.CreatedAt, &s.TopicCount); err != nil {
			return nil, apperror.NewInternal("failed to scan roadmap summary", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating roadmaps", err)
	}
	return list, nil
}

func (r *postgresRoadmapRepo) FindTopic(ctx context.Context, topicID uuid.UUID, roadmapID uuid.UUID) (*roadmap.Topic, error) {
	row := r.db.QueryRow(ctx, `SELECT `+topicColumns+` FROM roadmap_topics WHERE id = $1 AND roadmap_id = $2`, topicID, roadmapID)
	return scanTopic(row)
}

func (r *postgresRoadmapRepo) topics(ctx context.Context, roadmapID uuid.UUID) ([]roadmap.Topic, error) {
	rows, err := r.db.Query(ctx, `SELECT `+topicColumns+` FROM roadmap_topics WHERE roadmap_id = $1 ORDER BY order_index`, roadmapID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query topics", err)
	}
	defer rows.Close()

	topics := make([]roadmap.Topic, 0)
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating topics", err)
	}
	return topics, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
