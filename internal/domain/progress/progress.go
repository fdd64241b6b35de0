package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const CompletePercentage = 100

var (
	ErrInvalidWeek       = errors.New("week number must be at least 1")
	ErrNegativeHours     = errors.New("hours studied must not be negative")
	ErrInvalidCompletion = errors.New("completion percentage must be between 0 and 100")
	ErrNegativeTopics    = errors.New("topics completed must not be negative")
)

// Entry is keyed by (UserID, TopicID, WeekNumber). Each submission replaces the stored values.
type Entry struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	RoadmapID            uuid.UUID  `json:"roadmap_id"`
	TopicID              uuid.UUID  `json:"roadmap_topic_id"`
	TopicName            string     `json:"topic_name,omitempty"`
	WeekNumber           int        `json:"week_number"`
	HoursStudied         float64    `json:"hours_studied"`
	CompletionPercentage int        `json:"completion_percentage"`
	Notes                string     `json:"notes"`
	CompletedAt          *time.Time `json:"completed_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Weekly is keyed by (UserID, RoadmapID, WeekNumber) and is not derived from entries.
type Weekly struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	RoadmapID         uuid.UUID  `json:"roadmap_id"`
	WeekNumber        int        `json:"week_number"`
	WeekStartDate     *time.Time `json:"week_start_date"`
	TotalHoursStudied float64    `json:"total_hours_studied"`
	TopicsCompleted   int        `json:"topics_completed"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (e *Entry) Validate() error {
	if e.WeekNumber < 1 {
		return ErrInvalidWeek
	}
	if e.HoursStudied < 0 {
		return ErrNegativeHours
	}
	if e.CompletionPercentage < 0 || e.CompletionPercentage > CompletePercentage {
		return ErrInvalidCompletion
	}
	return nil
}

func (w *Weekly) Validate() error {
	if w.WeekNumber < 1 {
		return ErrInvalidWeek
	}
	if w.TotalHoursStudied < 0 {
		return ErrNegativeHours
	}
	if w.TopicsCompleted < 0 {
		return ErrNegativeTopics
	}
	return nil
}

// MergeCompletedAt is the completion policy for an upsert. A write reporting 100 stamps now.
// Any other write keeps prev, so a later regression below 100 does not retract completion.
func MergeCompletedAt(prev *time.Time, completion int, now time.Time) *time.Time {
	if completion == CompletePercentage {
		t := now
		return &t
	}
	return prev
}

type Repository interface {
	// UpsertEntry writes e under its natural key and returns the stored row.
	UpsertEntry(ctx context.Context, e *Entry) (*Entry, error)
	UpsertWeekly(ctx context.Context, w *Weekly) (*Weekly, error)
	// ListEntries returns entries ordered by topic order then week. A nil week lists all weeks.
	ListEntries(ctx context.Context, userID, roadmapID uuid.UUID, week *int) ([]*Entry, error)
	ListWeekly(ctx context.Context, userID, roadmapID uuid.UUID) ([]*Weekly, error)
}
