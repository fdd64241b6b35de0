package certification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/pkg/apperror"
)

type UpdateStatusUseCase struct {
	certRepo certification.Repository
	now      func() time.Time
}

func NewUpdateStatusUseCase(repo certification.Repository) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		certRepo: repo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type UpdateStatusInput struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Status string
}

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, input UpdateStatusInput) (*certification.UserCertification, error) {
	ctx, span := tracer.Start(ctx, "UpdateCertificationStatus")
	defer span.End()
	span.SetAttributes(attribute.String("status", input.Status))

	status, err := certification.ParseStatus(input.Status)
	if err != nil {
		return nil, apperror.NewInvalidInput("status must be one of recommended, in_progress, completed, skipped", err)
	}

	current, err := uc.certRepo.FindUserCertification(ctx, input.ID, input.UserID)
	if err != nil {
		if errors.Is(err, certification.ErrCertificationNotFound) {
			return nil, apperror.NewNotFound("certification", input.ID.String())
		}
		span.RecordError(err)
		return nil, err
	}

	if err := current.TransitionTo(status, uc.now()); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.certRepo.UpdateUserCertification(ctx, current); err != nil {
		if errors.Is(err, certification.ErrCertificationNotFound) {
			return nil, apperror.NewNotFound("certification", input.ID.String())
		}
		span.RecordError(err)
		return nil, err
	}
	return current, nil
}
