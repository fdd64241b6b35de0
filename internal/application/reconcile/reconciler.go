package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/logger"
)

// Reconciler persists generated content so repeated generation never duplicates catalog rows.
type Reconciler struct {
	roadmapRepo roadmap.Repository
	certRepo    certification.Repository
	logger      logger.Logger
	now         func() time.Time
}

func NewReconciler(rRepo roadmap.Repository, cRepo certification.Repository, log logger.Logger) *Reconciler {
	return &Reconciler{
		roadmapRepo: rRepo,
		certRepo:    cRepo,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SaveRoadmap inserts a new roadmap with its own fresh topics. Topics are never shared
// between roadmaps, so this is a plain insert.
func (r *Reconciler) SaveRoadmap(ctx context.Context, rm *roadmap.Roadmap) error {
	return r.roadmapRepo.Create(ctx, rm)
}

// ReconcileCertifications reuses catalog rows matching (name, provider) and creates a
// user certification only where none exists. Existing user rows keep their status and
// priority. The stored rows are returned once per certification, in input order.
func (r *Reconciler) ReconcileCertifications(ctx context.Context, userID uuid.UUID, roadmapID *uuid.UUID, recs []certification.Recommendation) ([]*certification.UserCertificationView, error) {
	now := r.now()
	out := make([]*certification.UserCertificationView, 0, len(recs))
	seen := make(map[uuid.UUID]struct{}, len(recs))

	for _, rec := range recs {
		candidate := rec.Certification
		candidate.ID = uuid.New()
		candidate.CreatedAt = now

		cert, err := r.certRepo.FindOrCreate(ctx, &candidate)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cert.ID]; dup {
			continue
		}
		seen[cert.ID] = struct{}{}

		uc := certification.NewUserCertification(userID, cert.ID, roadmapID, rec.Reason, rec.Priority, now)
		stored, created, err := r.certRepo.EnsureUserCertification(ctx, uc)
		if err != nil {
			return nil, err
		}
		if !created {
			r.logger.Debug("User certification already tracked, leaving untouched",
				zap.String("user_id", userID.String()),
				zap.String("certification_id", cert.ID.String()),
				zap.String("status", string(stored.Status)),
			)
		}

		out = append(out, &certification.UserCertificationView{
			UserCertification: *stored,
			Certification:     *cert,
		})
	}
	return out, nil
}
