package generation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
	"go.uber.org/zap"
)

const defaultRoadmapTitle = "Personalized Learning Roadmap"

// RoadmapBuilder turns a profile into an unsaved Roadmap with dense topic ordering.
type RoadmapBuilder struct {
	client  service.GenerativeClient
	coercer *Coercer
	cfg     Config
	log     logger.Logger
	now     func() time.Time
}

func NewRoadmapBuilder(client service.GenerativeClient, coercer *Coercer, cfg Config, log logger.Logger) *RoadmapBuilder {
	return &RoadmapBuilder{
		client:  client,
		coercer: coercer,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

func (b *RoadmapBuilder) Generate(ctx context.Context, p profile.Profile) (*roadmap.Roadmap, error) {
	p = p.Snapshot()

	raw, err := b.client.Complete(service.WithPurpose(ctx, "roadmap"), service.CompletionRequest{
		System:      roadmapSystemPrompt,
		Prompt:      buildRoadmapPrompt(p),
		MaxTokens:   b.cfg.RoadmapMaxTokens,
		Temperature: b.cfg.Temperature,
	})
	if err != nil {
		return nil, apperror.NewGenerationUnavailable("roadmap generation failed", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, apperror.NewGenerationUnavailable("roadmap generator returned no content", nil)
	}

	draft, err := b.coercer.CoerceRoadmap(raw)
	if err != nil {
		return nil, err
	}
	if len(draft.Topics) == 0 {
		return nil, apperror.NewMalformedGeneration("generated roadmap has no topics", nil)
	}

	r := &roadmap.Roadmap{
		ID:          uuid.New(),
		OwnerID:     p.OwnerID,
		Title:       draft.Title,
		Description: draft.Description,
		RawPayload:  raw,
		Topics:      make([]roadmap.Topic, len(draft.Topics)),
		CreatedAt:   b.now(),
	}
	if r.Title == "" {
		r.Title = defaultRoadmapTitle
	}

	// Generator numbering is ignored; position decides order.
	for i, t := range draft.Topics {
		r.Topics[i] = roadmap.Topic{
			ID:                 uuid.New(),
			RoadmapID:          r.ID,
			Name:               t.TopicName,
			Description:        strings.TrimSpace(t.Description),
			OrderIndex:         i + 1,
			EstimatedHours:     t.EstimatedHours,
			Prerequisites:      profile.OrderedSet(t.Prerequisites),
			LearningObjectives: profile.OrderedSet(t.LearningObjectives),
		}
	}

	r.EstimatedDurationWeeks = draft.EstimatedDurationWeeks
	if r.EstimatedDurationWeeks < 1 {
		r.EstimatedDurationWeeks = durationWeeks(r.TotalHours(), p.HoursPerWeek)
	}

	if err := r.Validate(); err != nil {
		return nil, apperror.NewMalformedGeneration("generated roadmap violates invariants", err)
	}

	b.log.Info("Roadmap generated",
		zap.String("owner_id", p.OwnerID.String()),
		zap.Int("topics", len(r.Topics)),
		zap.Int("weeks", r.EstimatedDurationWeeks),
	)
	return r, nil
}

// durationWeeks is ceil(total/perWeek), at least one week.
func durationWeeks(totalHours float64, hoursPerWeek int) int {
	if hoursPerWeek < 1 || totalHours <= 0 {
		return 1
	}
	weeks := int(math.Ceil(totalHours / float64(hoursPerWeek)))
	if weeks < 1 {
		return 1
	}
	return weeks
}
