package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

type ProfileUseCase struct {
	profileRepo profile.Repository
	logger      logger.Logger
}

func NewProfileUseCase(repo profile.Repository, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: repo,
		logger:      log,
	}
}

type GetProfileInput struct {
	OwnerID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "GetProfile")
	defer span.End()

	p, err := uc.profileRepo.GetByUserID(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, apperror.NewNotFound("profile", input.OwnerID.String())
		}
		span.RecordError(err)
		return nil, err
	}
	return &GetProfileOutput{Profile: p}, nil
}

type UpdateProfileInput struct {
	OwnerID        uuid.UUID
	Background     string
	CurrentSkills  []string
	LearningGoals  string
	HoursPerWeek   int
	LearningStyle  string
	TargetIndustry string
}

type UpdateProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	p := &profile.Profile{
		OwnerID:        input.OwnerID,
		Background:     input.Background,
		CurrentSkills:  input.CurrentSkills,
		LearningGoals:  input.LearningGoals,
		HoursPerWeek:   input.HoursPerWeek,
		LearningStyle:  input.LearningStyle,
		TargetIndustry: input.TargetIndustry,
		UpdatedAt:      time.Now().UTC(),
	}
	p.Normalize()

	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.profileRepo.Upsert(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", input.OwnerID.String()))
	return &UpdateProfileOutput{Profile: p}, nil
}
