package certification

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/studyplan/internal/domain/certification"
)

type ListCertificationsUseCase struct {
	certRepo  certification.Repository
	recommend *RecommendCertificationsUseCase
}

func NewListCertificationsUseCase(repo certification.Repository, recommend *RecommendCertificationsUseCase) *ListCertificationsUseCase {
	return &ListCertificationsUseCase{
		certRepo:  repo,
		recommend: recommend,
	}
}

type ListInput struct {
	UserID uuid.UUID
	// GenerateIfEmpty runs a recommendation from the latest roadmap when the user has none yet.
	GenerateIfEmpty bool
}

// Execute lists the user's certifications by priority, highest first.
func (uc *ListCertificationsUseCase) Execute(ctx context.Context, input ListInput) ([]*certification.UserCertificationView, error) {
	ctx, span := tracer.Start(ctx, "ListCertifications")
	defer span.End()

	list, err := uc.certRepo.ListByUser(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(list) > 0 || !input.GenerateIfEmpty || uc.recommend == nil {
		return list, nil
	}

	if _, err := uc.recommend.Execute(ctx, RecommendInput{UserID: input.UserID}); err != nil {
		return nil, err
	}
	return uc.certRepo.ListByUser(ctx, input.UserID)
}
