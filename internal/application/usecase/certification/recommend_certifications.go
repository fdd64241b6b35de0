package certification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/application/generation"
	"github.com/khoahotran/studyplan/internal/application/reconcile"
	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

var tracer = otel.Tracer("certification_usecase")

type RecommendCertificationsUseCase struct {
	profileRepo profile.Repository
	roadmapRepo roadmap.Repository
	recommender *generation.CertificationRecommender
	reconciler  *reconcile.Reconciler
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewRecommendCertificationsUseCase(
	pRepo profile.Repository,
	rRepo roadmap.Repository,
	recommender *generation.CertificationRecommender,
	reconciler *reconcile.Reconciler,
	publisher service.EventPublisher,
	log logger.Logger,
) *RecommendCertificationsUseCase {
	return &RecommendCertificationsUseCase{
		profileRepo: pRepo,
		roadmapRepo: rRepo,
		recommender: recommender,
		reconciler:  reconciler,
		publisher:   publisher,
		logger:      log,
	}
}

type RecommendInput struct {
	UserID uuid.UUID
	// RoadmapID selects the source roadmap. Nil means the user's latest one.
	RoadmapID *uuid.UUID
}

type CertificationsRecommendedPayload struct {
	UserID           uuid.UUID   `json:"user_id"`
	RoadmapID        uuid.UUID   `json:"roadmap_id"`
	CertificationIDs []uuid.UUID `json:"certification_ids"`
}

func (uc *RecommendCertificationsUseCase) Execute(ctx context.Context, input RecommendInput) ([]*certification.UserCertificationView, error) {
	ctx, span := tracer.Start(ctx, "RecommendCertifications")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	p, err := uc.profileRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, apperror.NewInvalidInput("user profile not found, complete your profile first", err)
		}
		span.RecordError(err)
		return nil, err
	}

	rm, err := uc.sourceRoadmap(ctx, input)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	recs, err := uc.recommender.Recommend(ctx, *p, rm.Topics)
	if err != nil {
		uc.logger.Warn("Certification recommendation failed", zap.String("user_id", input.UserID.String()), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	views, err := uc.reconciler.ReconcileCertifications(ctx, input.UserID, &rm.ID, recs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("certifications", len(views)))

	ids := make([]uuid.UUID, len(views))
	for i, v := range views {
		ids[i] = v.CertificationID
	}
	err = uc.publisher.Publish(ctx, service.Event{
		Type:    service.EventCertificationsRecommended,
		Key:     input.UserID.String(),
		Payload: CertificationsRecommendedPayload{UserID: input.UserID, RoadmapID: rm.ID, CertificationIDs: ids},
	})
	if err != nil {
		uc.logger.Error("Failed to publish certifications event", err, zap.String("user_id", input.UserID.String()))
	}

	return views, nil
}

func (uc *RecommendCertificationsUseCase) sourceRoadmap(ctx context.Context, input RecommendInput) (*roadmap.Roadmap, error) {
	if input.RoadmapID != nil {
		rm, err := uc.roadmapRepo.FindByID(ctx, *input.RoadmapID, input.UserID)
		if errors.Is(err, roadmap.ErrRoadmapNotFound) {
			return nil, apperror.NewNotFound("roadmap", input.RoadmapID.String())
		}
		return rm, err
	}

	rm, err := uc.roadmapRepo.FindLatestByOwner(ctx, input.UserID)
	if errors.Is(err, roadmap.ErrRoadmapNotFound) {
		return nil, apperror.NewInvalidInput("no roadmap found, generate a roadmap first", err)
	}
	return rm, err
}
