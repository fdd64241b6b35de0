package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinHoursPerWeek = 1
	MaxHoursPerWeek = 168
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrHoursPerWeekOutside = errors.New("hours per week must be between 1 and 168")
)

// Profile is the learner's self description. A copy of it is the only input to generation.
type Profile struct {
	OwnerID        uuid.UUID `json:"owner_id"`
	Background     string    `json:"background"`
	CurrentSkills  []string  `json:"current_skills"`
	LearningGoals  string    `json:"learning_goals"`
	HoursPerWeek   int       `json:"time_availability_hours_per_week"`
	LearningStyle  string    `json:"preferred_learning_style"`
	TargetIndustry string    `json:"target_industry"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Profile) Validate() error {
	if p.HoursPerWeek < MinHoursPerWeek || p.HoursPerWeek > MaxHoursPerWeek {
		return ErrHoursPerWeekOutside
	}
	return nil
}

// Normalize trims free text and collapses CurrentSkills into an ordered set.
func (p *Profile) Normalize() {
	p.Background = strings.TrimSpace(p.Background)
	p.LearningGoals = strings.TrimSpace(p.LearningGoals)
	p.LearningStyle = strings.TrimSpace(p.LearningStyle)
	p.TargetIndustry = strings.TrimSpace(p.TargetIndustry)
	p.CurrentSkills = OrderedSet(p.CurrentSkills)
}

// Snapshot returns a deep copy so generation never observes later edits.
func (p Profile) Snapshot() Profile {
	cp := p
	cp.CurrentSkills = append([]string(nil), p.CurrentSkills...)
	return cp
}

// OrderedSet drops blanks and repeats while keeping first-seen order.
func OrderedSet(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

type Repository interface {
	GetByUserID(ctx context.Context, ownerID uuid.UUID) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}
