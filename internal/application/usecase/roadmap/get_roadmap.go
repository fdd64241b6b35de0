package roadmap

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type GetRoadmapUseCase struct {
	roadmapRepo roadmap.Repository
}

func NewGetRoadmapUseCase(repo roadmap.Repository) *GetRoadmapUseCase {
	return &GetRoadmapUseCase{roadmapRepo: repo}
}

type GetRoadmapInput struct {
	RoadmapID uuid.UUID
	OwnerID   uuid.UUID
}

func (uc *GetRoadmapUseCase) Execute(ctx context.Context, input GetRoadmapInput) (*roadmap.Roadmap, error) {
	ctx, span := tracer.Start(ctx, "GetRoadmap")
	defer span.End()

	rm, err := uc.roadmapRepo.FindByID(ctx, input.RoadmapID, input.OwnerID)
	if err != nil {
		if errors.Is(err, roadmap.ErrRoadmapNotFound) {
			return nil, apperror.NewNotFound("roadmap", input.RoadmapID.String())
		}
		span.RecordError(err)
		return nil, err
	}
	return rm, nil
}

type ListRoadmapsUseCase struct {
	roadmapRepo roadmap.Repository
}

func NewListRoadmapsUseCase(repo roadmap.Repository) *ListRoadmapsUseCase {
	return &ListRoadmapsUseCase{roadmapRepo: repo}
}

type ListRoadmapsInput struct {
	OwnerID uuid.UUID
	Limit   int
	Offset  int
}

// Execute lists the owner's roadmaps, newest first.
func (uc *ListRoadmapsUseCase) Execute(ctx context.Context, input ListRoadmapsInput) ([]*roadmap.Summary, error) {
	ctx, span := tracer.Start(ctx, "ListRoadmaps")
	defer span.End()

	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	if input.Limit > maxListLimit {
		input.Limit = maxListLimit
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	list, err := uc.roadmapRepo.ListByOwner(ctx, input.OwnerID, input.Limit, input.Offset)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return list, nil
}
