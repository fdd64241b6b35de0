package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/studyplan/adapters/persistence/memory"
	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev service.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type AggregatorTestSuite struct {
	suite.Suite
	store     *memory.Store
	publisher *recordingPublisher
	agg       *Aggregator
	clock     time.Time

	userID  uuid.UUID
	roadmap *roadmap.Roadmap
}

func TestAggregatorTestSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}

func (s *AggregatorTestSuite) SetupTest() {
	s.store = memory.NewStore()
	s.publisher = &recordingPublisher{}
	s.agg = NewAggregator(s.store.Roadmaps(), s.store.Progress(), s.publisher, logger.NewNop())
	s.clock = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s.agg.now = func() time.Time { return s.clock }

	s.userID = uuid.New()
	id := uuid.New()
	s.roadmap = &roadmap.Roadmap{
		ID: id, OwnerID: s.userID, Title: "Go", EstimatedDurationWeeks: 2, CreatedAt: s.clock,
		Topics: []roadmap.Topic{
			{ID: uuid.New(), RoadmapID: id, Name: "Syntax", OrderIndex: 1, EstimatedHours: 4},
			{ID: uuid.New(), RoadmapID: id, Name: "Channels", OrderIndex: 2, EstimatedHours: 6},
		},
	}
	s.Require().NoError(s.store.Roadmaps().Create(context.Background(), s.roadmap))
}

func (s *AggregatorTestSuite) record(topic uuid.UUID, week, completion int, hours float64) {
	_, err := s.agg.Record(context.Background(), RecordInput{
		UserID: s.userID, RoadmapID: s.roadmap.ID, TopicID: topic,
		WeekNumber: week, HoursStudied: hours, CompletionPercentage: completion,
	})
	s.Require().NoError(err)
}

func (s *AggregatorTestSuite) TestCompletionIsStickyAcrossRegression() {
	ctx := context.Background()
	topic := s.roadmap.Topics[1].ID
	week := 2

	s.record(topic, week, 60, 3)

	s.clock = s.clock.Add(time.Hour)
	completedAt := s.clock
	s.record(topic, week, 100, 5)

	entries, err := s.agg.ListEntries(ctx, s.userID, s.roadmap.ID, &week)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(100, entries[0].CompletionPercentage)
	s.Equal(5.0, entries[0].HoursStudied)
	s.Require().NotNil(entries[0].CompletedAt)
	s.Equal(completedAt, *entries[0].CompletedAt)

	s.clock = s.clock.Add(time.Hour)
	s.record(topic, week, 40, 1)

	entries, err = s.agg.ListEntries(ctx, s.userID, s.roadmap.ID, &week)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(40, entries[0].CompletionPercentage)
	s.Equal(1.0, entries[0].HoursStudied, "hours are replaced, not added")
	s.Require().NotNil(entries[0].CompletedAt)
	s.Equal(completedAt, *entries[0].CompletedAt)

	s.Len(s.publisher.events, 3)
	s.Equal(service.EventProgressRecorded, s.publisher.events[0].Type)
}

func (s *AggregatorTestSuite) TestListEntriesOrdersByTopicThenWeek() {
	first, second := s.roadmap.Topics[0].ID, s.roadmap.Topics[1].ID
	s.record(second, 1, 10, 1)
	s.record(first, 2, 10, 1)
	s.record(first, 1, 10, 1)

	entries, err := s.agg.ListEntries(context.Background(), s.userID, s.roadmap.ID, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("Syntax", entries[0].TopicName)
	s.Equal(1, entries[0].WeekNumber)
	s.Equal(2, entries[1].WeekNumber)
	s.Equal("Channels", entries[2].TopicName)
}

func (s *AggregatorTestSuite) TestForeignRoadmapIsNotFound() {
	_, err := s.agg.Record(context.Background(), RecordInput{
		UserID: uuid.New(), RoadmapID: s.roadmap.ID, TopicID: s.roadmap.Topics[0].ID,
		WeekNumber: 1, CompletionPercentage: 10,
	})
	s.ErrorIs(err, apperror.ErrNotFound)

	_, err = s.agg.ListWeekly(context.Background(), uuid.New(), s.roadmap.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *AggregatorTestSuite) TestTopicFromAnotherRoadmapIsNotFound() {
	_, err := s.agg.Record(context.Background(), RecordInput{
		UserID: s.userID, RoadmapID: s.roadmap.ID, TopicID: uuid.New(),
		WeekNumber: 1, CompletionPercentage: 10,
	})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *AggregatorTestSuite) TestValidation() {
	base := RecordInput{UserID: s.userID, RoadmapID: s.roadmap.ID, TopicID: s.roadmap.Topics[0].ID, WeekNumber: 1}

	for name, mutate := range map[string]func(*RecordInput){
		"week zero":          func(in *RecordInput) { in.WeekNumber = 0 },
		"negative hours":     func(in *RecordInput) { in.HoursStudied = -1 },
		"completion above":   func(in *RecordInput) { in.CompletionPercentage = 101 },
		"completion below 0": func(in *RecordInput) { in.CompletionPercentage = -1 },
	} {
		in := base
		mutate(&in)
		_, err := s.agg.Record(context.Background(), in)
		s.ErrorIs(err, apperror.ErrInvalidInput, name)
	}
}

func (s *AggregatorTestSuite) TestRecordWeeklyUpsertsByWeek() {
	ctx := context.Background()
	start := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	first, err := s.agg.RecordWeekly(ctx, RecordWeeklyInput{
		UserID: s.userID, RoadmapID: s.roadmap.ID, WeekNumber: 1, WeekStartDate: &start,
		TotalHoursStudied: 4, TopicsCompleted: 1,
	})
	s.Require().NoError(err)

	second, err := s.agg.RecordWeekly(ctx, RecordWeeklyInput{
		UserID: s.userID, RoadmapID: s.roadmap.ID, WeekNumber: 1,
		TotalHoursStudied: 6, TopicsCompleted: 2, Notes: " tired ",
	})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	_, err = s.agg.RecordWeekly(ctx, RecordWeeklyInput{UserID: s.userID, RoadmapID: s.roadmap.ID, WeekNumber: 2})
	s.Require().NoError(err)

	weeks, err := s.agg.ListWeekly(ctx, s.userID, s.roadmap.ID)
	s.Require().NoError(err)
	s.Require().Len(weeks, 2)
	s.Equal(6.0, weeks[0].TotalHoursStudied)
	s.Equal("tired", weeks[0].Notes)
	s.Equal(2, weeks[1].WeekNumber)

	_, err = s.agg.RecordWeekly(ctx, RecordWeeklyInput{UserID: s.userID, RoadmapID: s.roadmap.ID, WeekNumber: 1, TopicsCompleted: -1})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func TestListEntries_RejectsWeekZero(t *testing.T) {
	store := memory.NewStore()
	agg := NewAggregator(store.Roadmaps(), store.Progress(), &recordingPublisher{}, logger.NewNop())
	week := 0

	_, err := agg.ListEntries(context.Background(), uuid.New(), uuid.New(), &week)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
