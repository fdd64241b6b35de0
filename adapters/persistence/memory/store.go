// Package memory holds map-backed repositories with the same natural-key semantics as
// the Postgres ones. The server uses them when no database DSN is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/progress"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
)

type certKey struct{ name, provider string }

type userCertKey struct{ userID, certID uuid.UUID }

type entryKey struct {
	userID, topicID uuid.UUID
	week            int
}

type weeklyKey struct {
	userID, roadmapID uuid.UUID
	week              int
}

// Store is shared by all repositories so lookups across entities see one state.
type Store struct {
	mu sync.RWMutex

	profiles  map[uuid.UUID]profile.Profile
	roadmaps  map[uuid.UUID]roadmap.Roadmap
	certs     map[uuid.UUID]certification.Certification
	certIndex map[certKey]uuid.UUID
	userCerts map[uuid.UUID]certification.UserCertification
	ucIndex   map[userCertKey]uuid.UUID
	entries   map[entryKey]progress.Entry
	weekly    map[weeklyKey]progress.Weekly
}

func NewStore() *Store {
	return &Store{
		profiles:  make(map[uuid.UUID]profile.Profile),
		roadmaps:  make(map[uuid.UUID]roadmap.Roadmap),
		certs:     make(map[uuid.UUID]certification.Certification),
		certIndex: make(map[certKey]uuid.UUID),
		userCerts: make(map[uuid.UUID]certification.UserCertification),
		ucIndex:   make(map[userCertKey]uuid.UUID),
		entries:   make(map[entryKey]progress.Entry),
		weekly:    make(map[weeklyKey]progress.Weekly),
	}
}

func (s *Store) Profiles() profile.Repository             { return &profileRepo{s} }
func (s *Store) Roadmaps() roadmap.Repository             { return &roadmapRepo{s} }
func (s *Store) Certifications() certification.Repository { return &certificationRepo{s} }
func (s *Store) Progress() progress.Repository            { return &progressRepo{s} }

// CertificationCount reports the catalog size.
func (s *Store) CertificationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.certs)
}

type profileRepo struct{ s *Store }

func (r *profileRepo) GetByUserID(_ context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[ownerID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	cp := p.Snapshot()
	return &cp, nil
}

func (r *profileRepo) Upsert(_ context.Context, p *profile.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[p.OwnerID] = p.Snapshot()
	return nil
}

type roadmapRepo struct{ s *Store }

func copyRoadmap(rm roadmap.Roadmap) *roadmap.Roadmap {
	cp := rm
	cp.Topics = make([]roadmap.Topic, len(rm.Topics))
	for i, t := range rm.Topics {
		t.Prerequisites = append([]string(nil), t.Prerequisites...)
		t.LearningObjectives = append([]string(nil), t.LearningObjectives...)
		cp.Topics[i] = t
	}
	return &cp
}

func (r *roadmapRepo) Create(_ context.Context, rm *roadmap.Roadmap) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roadmaps[rm.ID] = *copyRoadmap(*rm)
	return nil
}

func (r *roadmapRepo) FindByID(_ context.Context, id uuid.UUID, ownerID uuid.UUID) (*roadmap.Roadmap, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rm, ok := r.s.roadmaps[id]
	if !ok || rm.OwnerID != ownerID {
		return nil, roadmap.ErrRoadmapNotFound
	}
	return copyRoadmap(rm), nil
}

func (r *roadmapRepo) FindLatestByOwner(_ context.Context, ownerID uuid.UUID) (*roadmap.Roadmap, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *roadmap.Roadmap
	for _, rm := range r.s.roadmaps {
		if rm.OwnerID != ownerID {
			continue
		}
		if latest == nil || rm.CreatedAt.After(latest.CreatedAt) {
			latest = copyRoadmap(rm)
		}
	}
	if latest == nil {
		return nil, roadmap.ErrRoadmapNotFound
	}
	return latest, nil
}

func (r *roadmapRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*roadmap.Summary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*roadmap.Summary, 0)
	for _, rm := range r.s.roadmaps {
		if rm.OwnerID != ownerID {
			continue
		}
		head := rm
		head.Topics = nil
		out = append(out, &roadmap.Summary{Roadmap: head, TopicCount: len(rm.Topics)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *roadmapRepo) FindTopic(_ context.Context, topicID uuid.UUID, roadmapID uuid.UUID) (*roadmap.Topic, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rm, ok := r.s.roadmaps[roadmapID]
	if !ok {
		return nil, roadmap.ErrTopicNotFound
	}
	for _, t := range rm.Topics {
		if t.ID == topicID {
			cp := t
			return &cp, nil
		}
	}
	return nil, roadmap.ErrTopicNotFound
}

type certificationRepo struct{ s *Store }

func (r *certificationRepo) FindOrCreate(_ context.Context, c *certification.Certification) (*certification.Certification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := certKey{c.Name, c.Provider}
	if id, ok := r.s.certIndex[key]; ok {
		existing := r.s.certs[id]
		return &existing, nil
	}
	stored := *c
	r.s.certs[stored.ID] = stored
	r.s.certIndex[key] = stored.ID
	return &stored, nil
}

func (r *certificationRepo) EnsureUserCertification(_ context.Context, uc *certification.UserCertification) (*certification.UserCertification, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := userCertKey{uc.UserID, uc.CertificationID}
	if id, ok := r.s.ucIndex[key]; ok {
		existing := r.s.userCerts[id]
		return &existing, false, nil
	}
	stored := *uc
	r.s.userCerts[stored.ID] = stored
	r.s.ucIndex[key] = stored.ID
	return &stored, true, nil
}

func (r *certificationRepo) FindUserCertification(_ context.Context, id uuid.UUID, userID uuid.UUID) (*certification.UserCertification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	uc, ok := r.s.userCerts[id]
	if !ok || uc.UserID != userID {
		return nil, certification.ErrCertificationNotFound
	}
	return &uc, nil
}

func (r *certificationRepo) UpdateUserCertification(_ context.Context, uc *certification.UserCertification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.userCerts[uc.ID]
	if !ok || existing.UserID != uc.UserID {
		return certification.ErrCertificationNotFound
	}
	r.s.userCerts[uc.ID] = *uc
	return nil
}

func (r *certificationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*certification.UserCertificationView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*certification.UserCertificationView, 0)
	for _, uc := range r.s.userCerts {
		if uc.UserID != userID {
			continue
		}
		out = append(out, &certification.UserCertificationView{
			UserCertification: uc,
			Certification:     r.s.certs[uc.CertificationID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type progressRepo struct{ s *Store }

func (r *progressRepo) UpsertEntry(_ context.Context, e *progress.Entry) (*progress.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := entryKey{e.UserID, e.TopicID, e.WeekNumber}
	stored := *e
	if prev, ok := r.s.entries[key]; ok {
		stored.ID = prev.ID
		stored.CreatedAt = prev.CreatedAt
		stored.CompletedAt = progress.MergeCompletedAt(prev.CompletedAt, e.CompletionPercentage, e.UpdatedAt)
	} else {
		stored.CompletedAt = progress.MergeCompletedAt(nil, e.CompletionPercentage, e.UpdatedAt)
	}
	r.s.entries[key] = stored
	return &stored, nil
}

func (r *progressRepo) UpsertWeekly(_ context.Context, w *progress.Weekly) (*progress.Weekly, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := weeklyKey{w.UserID, w.RoadmapID, w.WeekNumber}
	stored := *w
	if prev, ok := r.s.weekly[key]; ok {
		stored.ID = prev.ID
		stored.CreatedAt = prev.CreatedAt
	}
	r.s.weekly[key] = stored
	return &stored, nil
}

func (r *progressRepo) ListEntries(_ context.Context, userID, roadmapID uuid.UUID, week *int) ([]*progress.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order := make(map[uuid.UUID]int)
	names := make(map[uuid.UUID]string)
	for _, t := range r.s.roadmaps[roadmapID].Topics {
		order[t.ID] = t.OrderIndex
		names[t.ID] = t.Name
	}

	out := make([]*progress.Entry, 0)
	for _, e := range r.s.entries {
		if e.UserID != userID || e.RoadmapID != roadmapID {
			continue
		}
		if week != nil && e.WeekNumber != *week {
			continue
		}
		cp := e
		cp.TopicName = names[e.TopicID]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := order[out[i].TopicID], order[out[j].TopicID]
		if oi != oj {
			return oi < oj
		}
		return out[i].WeekNumber < out[j].WeekNumber
	})
	return out, nil
}

func (r *progressRepo) ListWeekly(_ context.Context, userID, roadmapID uuid.UUID) ([]*progress.Weekly, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*progress.Weekly, 0)
	for _, w := range r.s.weekly {
		if w.UserID == userID && w.RoadmapID == roadmapID {
			cp := w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
