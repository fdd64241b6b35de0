package roadmap

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
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

var tracer = otel.Tracer("roadmap_usecase")

type GenerateRoadmapUseCase struct {
	profileRepo profile.Repository
	builder     *generation.RoadmapBuilder
	reconciler  *reconcile.Reconciler
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewGenerateRoadmapUseCase(pRepo profile.Repository, builder *generation.RoadmapBuilder, reconciler *reconcile.Reconciler, publisher service.EventPublisher, log logger.Logger) *GenerateRoadmapUseCase {
	return &GenerateRoadmapUseCase{
		profileRepo: pRepo,
		builder:     builder,
		reconciler:  reconciler,
		publisher:   publisher,
		logger:      log,
	}
}

type GenerateRoadmapInput struct {
	OwnerID uuid.UUID
}

type GenerateRoadmapOutput struct {
	Roadmap *roadmap.Roadmap
}

type RoadmapGeneratedPayload struct {
	RoadmapID uuid.UUID `json:"roadmap_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Topics    int       `json:"topics"`
}

// Execute generates and stores a new roadmap. Earlier roadmaps are left as history.
func (uc *GenerateRoadmapUseCase) Execute(ctx context.Context, input GenerateRoadmapInput) (*GenerateRoadmapOutput, error) {
	ctx, span := tracer.Start(ctx, "GenerateRoadmap")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.OwnerID.String()))

	p, err := uc.profileRepo.GetByUserID(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, apperror.NewInvalidInput("user profile not found, complete your profile first", err)
		}
		span.RecordError(err)
		return nil, err
	}

	rm, err := uc.builder.Generate(ctx, *p)
	if err != nil {
		uc.logger.Warn("Roadmap generation failed", zap.String("user_id", input.OwnerID.String()), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	if err := uc.reconciler.SaveRoadmap(ctx, rm); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("roadmap_id", rm.ID.String()), attribute.Int("topics", len(rm.Topics)))

	err = uc.publisher.Publish(ctx, service.Event{
		Type: service.EventRoadmapGenerated,
		Key:  input.OwnerID.String(),
		Payload: RoadmapGeneratedPayload{
			RoadmapID: rm.ID,
			OwnerID:   rm.OwnerID,
			Title:     rm.Title,
			Topics:    len(rm.Topics),
		},
	})
	if err != nil {
		uc.logger.Error("Failed to publish roadmap event", err, zap.String("roadmap_id", rm.ID.String()))
	}

	return &GenerateRoadmapOutput{Roadmap: rm}, nil
}
