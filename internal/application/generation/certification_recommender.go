package generation

import (
	"context"
	"math"
	"strings"

	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
	"go.uber.org/zap"
)

type CertificationRecommender struct {
	client  service.GenerativeClient
	coercer *Coercer
	cfg     Config
	log     logger.Logger
}

func NewCertificationRecommender(client service.GenerativeClient, coercer *Coercer, cfg Config, log logger.Logger) *CertificationRecommender {
	return &CertificationRecommender{
		client:  client,
		coercer: coercer,
		cfg:     cfg,
		log:     log,
	}
}

// Recommend asks for certifications matching the profile and roadmap topics.
// Priority outside 1..5, or not a whole number, falls back to 1.
func (r *CertificationRecommender) Recommend(ctx context.Context, p profile.Profile, topics []roadmap.Topic) ([]certification.Recommendation, error) {
	if len(topics) == 0 {
		return nil, apperror.NewInvalidInput("certification recommendation requires at least one roadmap topic", nil)
	}
	p = p.Snapshot()

	raw, err := r.client.Complete(service.WithPurpose(ctx, "certifications"), service.CompletionRequest{
		System:      certificationSystemPrompt,
		Prompt:      buildCertificationPrompt(p, roadmap.TopicNames(topics)),
		MaxTokens:   r.cfg.CertificationMaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return nil, apperror.NewGenerationUnavailable("certification recommendation failed", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, apperror.NewGenerationUnavailable("certification generator returned no content", nil)
	}

	drafts, err := r.coercer.CoerceCertifications(raw)
	if err != nil {
		return nil, err
	}

	recs := make([]certification.Recommendation, 0, len(drafts))
	for _, d := range drafts {
		recs = append(recs, toRecommendation(d))
	}

	r.log.Info("Certifications recommended",
		zap.String("owner_id", p.OwnerID.String()),
		zap.Int("count", len(recs)),
	)
	return recs, nil
}

func toRecommendation(d CertificationDraft) certification.Recommendation {
	priority := certification.MinPriority
	if p, ok := d.Priority.Int(); ok {
		priority = certification.NormalizePriority(p)
	}

	hours := 0
	if d.EstimatedStudyHours.Valid && d.EstimatedStudyHours.Value > 0 {
		hours = int(math.Round(d.EstimatedStudyHours.Value))
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = certification.DefaultCategory
	}

	var website *string
	if u := strings.TrimSpace(d.WebsiteURL); u != "" {
		website = &u
	}

	return certification.Recommendation{
		Certification: certification.Certification{
			Name:                d.Name,
			Provider:            d.Provider,
			Description:         strings.TrimSpace(d.Description),
			DifficultyLevel:     certification.ParseDifficulty(d.DifficultyLevel),
			EstimatedStudyHours: hours,
			Category:            category,
			WebsiteURL:          website,
		},
		Reason:   strings.TrimSpace(d.RecommendationReason),
		Priority: priority,
	}
}
