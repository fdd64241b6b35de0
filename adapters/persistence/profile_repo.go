package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func (r *postgresProfileRepo) GetByUserID(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	query := `
		SELECT user_id, background, current_skills, learning_goals,
		       time_availability_hours_per_week, preferred_learning_style, target_industry, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	p := &profile.Profile{}
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&p.OwnerID,
		&p.Background,
		&p.CurrentSkills,
		&p.LearningGoals,
		&p.HoursPerWeek,
		&p.LearningStyle,
		&p.TargetIndustry,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, apperror.NewInternal("failed to query profile", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) Upsert(ctx context.Context, p *profile.Profile) error {
	skills := p.CurrentSkills
	if skills == nil {
		skills = []string{}
	}

	query := `
		INSERT INTO user_profiles (user_id, background, current_skills, learning_goals,
			time_availability_hours_per_week, preferred_learning_style, target_industry, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			background = EXCLUDED.background,
			current_skills = EXCLUDED.current_skills,
			learning_goals = EXCLUDED.learning_goals,
			time_availability_hours_per_week = EXCLUDED.time_availability_hours_per_week,
			preferred_learning_style = EXCLUDED.preferred_learning_style,
			target_industry = EXCLUDED.target_industry,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		p.OwnerID,
		p.Background,
		skills,
		p.LearningGoals,
		p.HoursPerWeek,
		p.LearningStyle,
		p.TargetIndustry,
		p.UpdatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to upsert profile", err)
	}
	return nil
}
