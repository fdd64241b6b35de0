package service

import (
	"context"
)

const (
	EventRoadmapGenerated          = "roadmap.generated"
	EventCertificationsRecommended = "certifications.recommended"
	EventProgressRecorded          = "progress.recorded"
)

// Event is a domain fact emitted after a successful commit.
type Event struct {
	Type    string
	Key     string
	Payload any
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
