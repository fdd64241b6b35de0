package progress

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/domain/progress"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

var tracer = otel.Tracer("progress_usecase")

// Aggregator merges repeated progress submissions into one row per natural key.
// Conflicts are settled by the repository upsert; the later write wins.
type Aggregator struct {
	roadmapRepo  roadmap.Repository
	progressRepo progress.Repository
	publisher    service.EventPublisher
	logger       logger.Logger
	now          func() time.Time
}

func NewAggregator(rRepo roadmap.Repository, pRepo progress.Repository, publisher service.EventPublisher, log logger.Logger) *Aggregator {
	return &Aggregator{
		roadmapRepo:  rRepo,
		progressRepo: pRepo,
		publisher:    publisher,
		logger:       log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type RecordInput struct {
	UserID               uuid.UUID
	RoadmapID            uuid.UUID
	TopicID              uuid.UUID
	WeekNumber           int
	HoursStudied         float64
	CompletionPercentage int
	Notes                string
}

type RecordWeeklyInput struct {
	UserID            uuid.UUID
	RoadmapID         uuid.UUID
	WeekNumber        int
	WeekStartDate     *time.Time
	TotalHoursStudied float64
	TopicsCompleted   int
	Notes             string
}

type ProgressRecordedPayload struct {
	UserID               uuid.UUID `json:"user_id"`
	RoadmapID            uuid.UUID `json:"roadmap_id"`
	TopicID              uuid.UUID `json:"roadmap_topic_id"`
	WeekNumber           int       `json:"week_number"`
	CompletionPercentage int       `json:"completion_percentage"`
	Completed            bool      `json:"completed"`
}

// Record replaces hours, completion and notes for (user, topic, week). CompletedAt is
// stamped when this write reports 100 and otherwise kept from the previous row.
func (a *Aggregator) Record(ctx context.Context, input RecordInput) (*progress.Entry, error) {
	ctx, span := tracer.Start(ctx, "RecordProgress")
	defer span.End()
	span.SetAttributes(
		attribute.String("roadmap_id", input.RoadmapID.String()),
		attribute.Int("week_number", input.WeekNumber),
	)

	now := a.now()
	entry := &progress.Entry{
		ID:                   uuid.New(),
		UserID:               input.UserID,
		RoadmapID:            input.RoadmapID,
		TopicID:              input.TopicID,
		WeekNumber:           input.WeekNumber,
		HoursStudied:         input.HoursStudied,
		CompletionPercentage: input.CompletionPercentage,
		Notes:                strings.TrimSpace(input.Notes),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := entry.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := a.ensureRoadmap(ctx, input.RoadmapID, input.UserID); err != nil {
		return nil, err
	}
	topic, err := a.roadmapRepo.FindTopic(ctx, input.TopicID, input.RoadmapID)
	if err != nil {
		if errors.Is(err, roadmap.ErrTopicNotFound) {
			return nil, apperror.NewNotFound("topic", input.TopicID.String())
		}
		span.RecordError(err)
		return nil, err
	}

	stored, err := a.progressRepo.UpsertEntry(ctx, entry)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	stored.TopicName = topic.Name

	err = a.publisher.Publish(ctx, service.Event{
		Type: service.EventProgressRecorded,
		Key:  input.UserID.String(),
		Payload: ProgressRecordedPayload{
			UserID:               stored.UserID,
			RoadmapID:            stored.RoadmapID,
			TopicID:              stored.TopicID,
			WeekNumber:           stored.WeekNumber,
			CompletionPercentage: stored.CompletionPercentage,
			Completed:            stored.CompletedAt != nil,
		},
	})
	if err != nil {
		a.logger.Error("Failed to publish progress event", err, zap.String("entry_id", stored.ID.String()))
	}

	return stored, nil
}

// RecordWeekly upserts the weekly summary for (user, roadmap, week). It is independent of
// topic entries and may disagree with them.
func (a *Aggregator) RecordWeekly(ctx context.Context, input RecordWeeklyInput) (*progress.Weekly, error) {
	ctx, span := tracer.Start(ctx, "RecordWeeklyProgress")
	defer span.End()

	now := a.now()
	weekly := &progress.Weekly{
		ID:                uuid.New(),
		UserID:            input.UserID,
		RoadmapID:         input.RoadmapID,
		WeekNumber:        input.WeekNumber,
		WeekStartDate:     input.WeekStartDate,
		TotalHoursStudied: input.TotalHoursStudied,
		TopicsCompleted:   input.TopicsCompleted,
		Notes:             strings.TrimSpace(input.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := weekly.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := a.ensureRoadmap(ctx, input.RoadmapID, input.UserID); err != nil {
		return nil, err
	}

	stored, err := a.progressRepo.UpsertWeekly(ctx, weekly)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return stored, nil
}

// ListEntries returns entries by topic order then week. A nil week returns every week.
func (a *Aggregator) ListEntries(ctx context.Context, userID, roadmapID uuid.UUID, week *int) ([]*progress.Entry, error) {
	ctx, span := tracer.Start(ctx, "ListProgress")
	defer span.End()

	if week != nil && *week < 1 {
		return nil, apperror.NewInvalidInput(progress.ErrInvalidWeek.Error(), progress.ErrInvalidWeek)
	}
	if err := a.ensureRoadmap(ctx, roadmapID, userID); err != nil {
		return nil, err
	}
	return a.progressRepo.ListEntries(ctx, userID, roadmapID, week)
}

func (a *Aggregator) ListWeekly(ctx context.Context, userID, roadmapID uuid.UUID) ([]*progress.Weekly, error) {
	ctx, span := tracer.Start(ctx, "ListWeeklyProgress")
	defer span.End()

	if err := a.ensureRoadmap(ctx, roadmapID, userID); err != nil {
		return nil, err
	}
	return a.progressRepo.ListWeekly(ctx, userID, roadmapID)
}

// ensureRoadmap reports a foreign roadmap as not found so its existence does not leak.
func (a *Aggregator) ensureRoadmap(ctx context.Context, roadmapID, userID uuid.UUID) error {
	if _, err := a.roadmapRepo.FindByID(ctx, roadmapID, userID); err != nil {
		if errors.Is(err, roadmap.ErrRoadmapNotFound) {
			return apperror.NewNotFound("roadmap", roadmapID.String())
		}
		return err
	}
	return nil
}
