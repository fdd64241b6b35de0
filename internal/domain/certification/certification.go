package certification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRecommended Status = "recommended"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusSkipped     Status = "skipped"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultCategory = "General"
)

var (
	ErrCertificationNotFound = errors.New("certification not found")
	ErrInvalidStatus         = errors.New("invalid status")
)

// Certification is a global catalog row shared by every user, unique on (Name, Provider).
type Certification struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Provider            string     `json:"provider"`
	Description         string     `json:"description"`
	DifficultyLevel     Difficulty `json:"difficulty_level"`
	EstimatedStudyHours int        `json:"estimated_study_hours"`
	Category            string     `json:"category"`
	WebsiteURL          *string    `json:"website_url"`
	CreatedAt           time.Time  `json:"created_at"`
}

type UserCertification struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	CertificationID      uuid.UUID  `json:"certification_id"`
	RoadmapID            *uuid.UUID `json:"roadmap_id"`
	RecommendationReason string     `json:"recommendation_reason"`
	Priority             int        `json:"priority"`
	Status               Status     `json:"status"`
	StartedAt            *time.Time `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Recommendation pairs a candidate catalog entry with the per-user reason and priority.
type Recommendation struct {
	Certification Certification
	Reason        string
	Priority      int
}

// UserCertificationView is a user's certification joined with its catalog row.
type UserCertificationView struct {
	UserCertification
	Certification Certification `json:"certification"`
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusRecommended, StatusInProgress, StatusCompleted, StatusSkipped:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// ParseDifficulty is lenient: unknown or empty values become intermediate.
func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return d
	}
	return DifficultyIntermediate
}

// NormalizePriority keeps 1..5 and maps anything else to the lowest priority.
func NormalizePriority(p int) int {
	if p < MinPriority || p > MaxPriority {
		return MinPriority
	}
	return p
}

// NewUserCertification starts a fresh recommendation in the recommended state.
func NewUserCertification(userID, certID uuid.UUID, roadmapID *uuid.UUID, reason string, priority int, now time.Time) *UserCertification {
	return &UserCertification{
		ID:                   uuid.New(),
		UserID:               userID,
		CertificationID:      certID,
		RoadmapID:            roadmapID,
		RecommendationReason: reason,
		Priority:             NormalizePriority(priority),
		Status:               StatusRecommended,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// TransitionTo moves to any status. Entering in_progress stamps StartedAt once;
// entering completed stamps CompletedAt.
func (uc *UserCertification) TransitionTo(status Status, now time.Time) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	switch status {
	case StatusInProgress:
		if uc.StartedAt == nil {
			t := now
			uc.StartedAt = &t
		}
	case StatusCompleted:
		t := now
		uc.CompletedAt = &t
	}
	uc.Status = status
	uc.UpdatedAt = now
	return nil
}

type Repository interface {
	// FindOrCreate returns the catalog row for (Name, Provider), inserting c when absent.
	FindOrCreate(ctx context.Context, c *Certification) (*Certification, error)
	// EnsureUserCertification inserts uc unless (UserID, CertificationID) already exists.
	// The stored row is returned either way; created reports whether uc was inserted.
	EnsureUserCertification(ctx context.Context, uc *UserCertification) (stored *UserCertification, created bool, err error)
	FindUserCertification(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*UserCertification, error)
	UpdateUserCertification(ctx context.Context, uc *UserCertification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserCertificationView, error)
}
