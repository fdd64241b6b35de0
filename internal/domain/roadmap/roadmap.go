package roadmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoadmapNotFound = errors.New("roadmap not found")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrNoTopics        = errors.New("roadmap must contain at least one topic")
)

// Roadmap is one generated curriculum. It is written once and never updated;
// regenerating produces a new row and older ones stay as history.
type Roadmap struct {
	ID                     uuid.UUID `json:"id"`
	OwnerID                uuid.UUID `json:"owner_id"`
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	EstimatedDurationWeeks int       `json:"estimated_duration_weeks"`
	RawPayload             string    `json:"-"`
	Topics                 []Topic   `json:"topics"`
	CreatedAt              time.Time `json:"created_at"`
}

type Topic struct {
	ID                 uuid.UUID `json:"id"`
	RoadmapID          uuid.UUID `json:"roadmap_id"`
	Name               string    `json:"topic_name"`
	Description        string    `json:"description"`
	OrderIndex         int       `json:"order_index"`
	EstimatedHours     float64   `json:"estimated_hours"`
	Prerequisites      []string  `json:"prerequisites"`
	LearningObjectives []string  `json:"learning_objectives"`
}

// Summary is a list row: the roadmap header plus how many topics it owns.
type Summary struct {
	Roadmap
	TopicCount int `json:"topic_count"`
}

// Validate checks the ordering invariant: OrderIndex runs 1..N in slice order.
func (r *Roadmap) Validate() error {
	if len(r.Topics) == 0 {
		return ErrNoTopics
	}
	if r.EstimatedDurationWeeks < 1 {
		return fmt.Errorf("estimated duration must be at least one week, got %d", r.EstimatedDurationWeeks)
	}
	for i, t := range r.Topics {
		if t.OrderIndex != i+1 {
			return fmt.Errorf("topic %q has order index %d, want %d", t.Name, t.OrderIndex, i+1)
		}
		if t.EstimatedHours < 0 {
			return fmt.Errorf("topic %q has negative estimated hours", t.Name)
		}
	}
	return nil
}

// TotalHours sums the estimated hours over all topics.
func (r *Roadmap) TotalHours() float64 {
	var total float64
	for _, t := range r.Topics {
		total += t.EstimatedHours
	}
	return total
}

// TopicNames lists topic names in order.
func TopicNames(topics []Topic) []string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

type Repository interface {
	// Create inserts the roadmap and all of its topics atomically.
	Create(ctx context.Context, r *Roadmap) error
	FindByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*Roadmap, error)
	FindLatestByOwner(ctx context.Context, ownerID uuid.UUID) (*Roadmap, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Summary, error)
	FindTopic(ctx context.Context, topicID uuid.UUID, roadmapID uuid.UUID) (*Topic, error)
}
