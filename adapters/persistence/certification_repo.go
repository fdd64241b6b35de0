package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type postgresCertificationRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCertificationRepo(db *pgxpool.Pool, logger logger.Logger) certification.Repository {
	return &postgresCertificationRepo{db: db, logger: logger}
}

const certificationColumns = "id, name, provider, description, difficulty_level, estimated_study_hours, category, website_url, created_at"

const userCertificationColumns = "id, user_id, certification_id, roadmap_id, recommendation_reason, priority, status, started_at, completed_at, created_at, updated_at"

func scanCertification(row pgx.Row) (*certification.Certification, error) {
	c := &certification.Certification{}
	var difficulty string
	err := row.Scan(&c.ID, &c.Name, &c.Provider, &c.Description, &difficulty, &c.EstimatedStudyHours, &c.Category, &c.WebsiteURL, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.DifficultyLevel = certification.Difficulty(difficulty)
	return c, nil
}

func scanUserCertification(row pgx.Row) (*certification.UserCertification, error) {
	uc := &certification.UserCertification{}
	var status string
	err := row.Scan(&uc.ID, &uc.UserID, &uc.CertificationID, &uc.RoadmapID, &uc.RecommendationReason,
		&uc.Priority, &status, &uc.StartedAt, &uc.CompletedAt, &uc.CreatedAt, &uc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	uc.Status = certification.Status(status)
	return uc, nil
}

// FindOrCreate inserts the certification unless (name, provider) is already cataloged,
// in which case the existing row wins.
func (r *postgresCertificationRepo) FindOrCreate(ctx context.Context, c *certification.Certification) (*certification.Certification, error) {
	insert := `
		INSERT INTO certifications (` + certificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name, provider) DO NOTHING
		RETURNING ` + certificationColumns
	stored, err := scanCertification(r.db.QueryRow(ctx, insert,
		c.ID, c.Name, c.Provider, c.Description, string(c.DifficultyLevel), c.EstimatedStudyHours, c.Category, c.WebsiteURL, c.CreatedAt,
	))
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewInternal("failed to insert certification", err)
	}

	existing, err := scanCertification(r.db.QueryRow(ctx,
		`SELECT `+certificationColumns+` FROM certifications WHERE name = $1 AND provider = $2`, c.Name, c.Provider))
	if err != nil {
		return nil, apperror.NewInternal("failed to load existing certification", err)
	}
	return existing, nil
}

func (r *postgresCertificationRepo) EnsureUserCertification(ctx context.Context, uc *certification.UserCertification) (*certification.UserCertification, bool, error) {
	insert := `
		INSERT INTO user_certifications (` + userCertificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, certification_id) DO NOTHING
		RETURNING ` + userCertificationColumns
	stored, err := scanUserCertification(r.db.QueryRow(ctx, insert,
		uc.ID, uc.UserID, uc.CertificationID, uc.RoadmapID, uc.RecommendationReason,
		uc.Priority, string(uc.Status), uc.StartedAt, uc.CompletedAt, uc.CreatedAt, uc.UpdatedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, apperror.NewInternal("failed to insert user certification", err)
	}

	existing, err := scanUserCertification(r.db.QueryRow(ctx,
		`SELECT `+userCertificationColumns+` FROM user_certifications WHERE user_id = $1 AND certification_id = $2`,
		uc.UserID, uc.CertificationID))
	if err != nil {
		return nil, false, apperror.NewInternal("failed to load existing user certification", err)
	}
	return existing, false, nil
}

func (r *postgresCertificationRepo) FindUserCertification(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*certification.UserCertification, error) {
	uc, err := scanUserCertification(r.db.QueryRow(ctx,
		`SELECT `+userCertificationColumns+` FROM user_certifications WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, certification.ErrCertificationNotFound
		}
		return nil, apperror.NewInternal("failed to query user certification", err)
	}
	return uc, nil
}

func (r *postgresCertificationRepo) UpdateUserCertification(ctx context.Context, uc *certification.UserCertification) error {
	query := `
		UPDATE user_certifications
		SET status = $1, started_at = $2, completed_at = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`
	cmdTag, err := r.db.Exec(ctx, query, string(uc.Status), uc.StartedAt, uc.CompletedAt, uc.UpdatedAt, uc.ID, uc.UserID)
	if err != nil {
		return apperror.NewInternal("failed to update user certification", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return certification.ErrCertificationNotFound
	}
	return nil
}

func (r *postgresCertificationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*certification.UserCertificationView, error) {
	query, args, err := psql.Select(
		"uc.id", "uc.user_id", "uc.certification_id", "uc.roadmap_id", "uc.recommendation_reason",
		"uc.priority", "uc.status", "uc.started_at", "uc.completed_at", "uc.created_at", "uc.updated_at",
		"c.id", "c.name", "c.provider", "c.description", "c.difficulty_level", "c.estimated_study_hours",
		"c.category", "c.website_url", "c.created_at",
	).
		From("user_certifications uc").
		Join("certifications c ON c.id = uc.certification_id").
		Where("uc.user_id = ?", userID).
		OrderBy("uc.priority DESC", "uc.created_at DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build certification list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list user certifications", err)
	}
	defer rows.Close()

	views := make([]*certification.UserCertificationView, 0)
	for rows.Next() {
		v := &certification.UserCertificationView{}
		var status, difficulty string
		err := rows.Scan(
			&v.ID, &v.UserID, &v.CertificationID, &v.RoadmapID, &v.RecommendationReason,
			&v.Priority, &status, &v.StartedAt, &v.CompletedAt, &v.CreatedAt, &v.UpdatedAt,
			&v.Certification.ID, &v.Certification.Name, &v.Certification.Provider, &v.Certification.Description,
			&difficulty, &v.Certification.EstimatedStudyHours, &v.Certification.Category,
			&v.Certification.WebsiteURL, &v.Certification.CreatedAt,
		)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan user certification", err)
		}
		v.Status = certification.Status(status)
		v.Certification.DifficultyLevel = certification.Difficulty(difficulty)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating user certifications", err)
	}
	return views, nil
}
