package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/progress"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type RepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger

	profileRepo  profile.Repository
	roadmapRepo  roadmap.Repository
	certRepo     certification.Repository
	progressRepo progress.Repository
}

func (s *RepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool
	s.testLogger = logger.NewNop()

	s.profileRepo = NewPostgresProfileRepo(s.dbPool, s.testLogger)
	s.roadmapRepo = NewPostgresRoadmapRepo(s.dbPool, s.testLogger)
	s.certRepo = NewPostgresCertificationRepo(s.dbPool, s.testLogger)
	s.progressRepo = NewPostgresProgressRepo(s.dbPool, s.testLogger)
}

func (s *RepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RepoIntegrationTestSuite))
}

func (s *RepoIntegrationTestSuite) seedRoadmap(owner uuid.UUID, createdAt time.Time, names ...string) *roadmap.Roadmap {
	id := uuid.New()
	rm := &roadmap.Roadmap{
		ID: id, OwnerID: owner, Title: "Cloud path", Description: "desc",
		RawPayload: `{"topics":[]}`, EstimatedDurationWeeks: 4, CreatedAt: createdAt,
	}
	for i, name := range names {
		rm.Topics = append(rm.Topics, roadmap.Topic{
			ID: uuid.New(), RoadmapID: id, Name: name, OrderIndex: i + 1, EstimatedHours: 2.5,
			Prerequisites: []string{}, LearningObjectives: []string{"understand " + name},
		})
	}
	s.Require().NoError(s.roadmapRepo.Create(context.Background(), rm))
	return rm
}

func (s *RepoIntegrationTestSuite) Test_Profile_UpsertReplaces() {
	ctx := context.Background()
	owner := uuid.New()

	_, err := s.profileRepo.GetByUserID(ctx, owner)
	s.ErrorIs(err, profile.ErrProfileNotFound)

	p := &profile.Profile{OwnerID: owner, Background: "Backend", CurrentSkills: []string{"Go"}, HoursPerWeek: 10, UpdatedAt: time.Now().UTC()}
	s.NoError(s.profileRepo.Upsert(ctx, p))

	p.HoursPerWeek = 6
	p.CurrentSkills = []string{"Go", "SQL"}
	s.NoError(s.profileRepo.Upsert(ctx, p))

	found, err := s.profileRepo.GetByUserID(ctx, owner)
	s.Require().NoError(err)
	s.Equal(6, found.HoursPerWeek)
	s.Equal([]string{"Go", "SQL"}, found.CurrentSkills)
}

func (s *RepoIntegrationTestSuite) Test_Roadmap_CreateAndFind() {
	ctx := context.Background()
	owner := uuid.New()
	older := s.seedRoadmap(owner, time.Now().UTC().Add(-time.Hour), "Networking")
	latest := s.seedRoadmap(owner, time.Now().UTC(), "Linux", "Containers", "Kubernetes")

	found, err := s.roadmapRepo.FindByID(ctx, latest.ID, owner)
	s.Require().NoError(err)
	s.Equal([]string{"Linux", "Containers", "Kubernetes"}, roadmap.TopicNames(found.Topics))
	s.Equal(latest.RawPayload, found.RawPayload)

	_, err = s.roadmapRepo.FindByID(ctx, latest.ID, uuid.New())
	s.ErrorIs(err, roadmap.ErrRoadmapNotFound)

	newest, err := s.roadmapRepo.FindLatestByOwner(ctx, owner)
	s.Require().NoError(err)
	s.Equal(latest.ID, newest.ID)

	list, err := s.roadmapRepo.ListByOwner(ctx, owner, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(latest.ID, list[0].ID)
	s.Equal(3, list[0].TopicCount)
	s.Equal(older.ID, list[1].ID)

	topic, err := s.roadmapRepo.FindTopic(ctx, latest.Topics[1].ID, latest.ID)
	s.Require().NoError(err)
	s.Equal("Containers", topic.Name)

	_, err = s.roadmapRepo.FindTopic(ctx, latest.Topics[1].ID, older.ID)
	s.ErrorIs(err, roadmap.ErrTopicNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Certification_NaturalKeys() {
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := s.certRepo.FindOrCreate(ctx, &certification.Certification{
		ID: uuid.New(), Name: "AWS Solutions Architect", Provider: "AWS",
		DifficultyLevel: certification.DifficultyIntermediate, Category: "Cloud", CreatedAt: now,
	})
	s.Require().NoError(err)

	again, err := s.certRepo.FindOrCreate(ctx, &certification.Certification{
		ID: uuid.New(), Name: "AWS Solutions Architect", Provider: "AWS",
		DifficultyLevel: certification.DifficultyAdvanced, Category: "Other", CreatedAt: now,
	})
	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)
	s.Equal("Cloud", again.Category)

	userID := uuid.New()
	uc := certification.NewUserCertification(userID, first.ID, nil, "cloud goals", 4, now)
	stored, created, err := s.certRepo.EnsureUserCertification(ctx, uc)
	s.Require().NoError(err)
	s.True(created)

	s.Require().NoError(stored.TransitionTo(certification.StatusCompleted, now))
	s.Require().NoError(s.certRepo.UpdateUserCertification(ctx, stored))

	dup := certification.NewUserCertification(userID, first.ID, nil, "other", 1, now)
	kept, created, err := s.certRepo.EnsureUserCertification(ctx, dup)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(stored.ID, kept.ID)
	s.Equal(certification.StatusCompleted, kept.Status)
	s.Equal(4, kept.Priority)
	s.NotNil(kept.CompletedAt)

	views, err := s.certRepo.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal("AWS Solutions Architect", views[0].Certification.Name)

	_, err = s.certRepo.FindUserCertification(ctx, stored.ID, uuid.New())
	s.ErrorIs(err, certification.ErrCertificationNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Progress_CompletedAtSticks() {
	ctx := context.Background()
	userID := uuid.New()
	rm := s.seedRoadmap(userID, time.Now().UTC(), "Networking", "Containers")

	record := func(topic roadmap.Topic, week, pct int) *progress.Entry {
		now := time.Now().UTC()
		e, err := s.progressRepo.UpsertEntry(ctx, &progress.Entry{
			ID: uuid.New(), UserID: userID, RoadmapID: rm.ID, TopicID: topic.ID,
			WeekNumber: week, HoursStudied: 3, CompletionPercentage: pct, CreatedAt: now, UpdatedAt: now,
		})
		s.Require().NoError(err)
		return e
	}

	first := record(rm.Topics[0], 1, 60)
	s.Nil(first.CompletedAt)

	done := record(rm.Topics[0], 1, 100)
	s.Equal(first.ID, done.ID)
	s.Require().NotNil(done.CompletedAt)

	back := record(rm.Topics[0], 1, 40)
	s.Equal(40, back.CompletionPercentage)
	s.Require().NotNil(back.CompletedAt)
	s.WithinDuration(*done.CompletedAt, *back.CompletedAt, time.Millisecond)

	record(rm.Topics[1], 1, 10)
	record(rm.Topics[0], 2, 0)

	all, err := s.progressRepo.ListEntries(ctx, userID, rm.ID, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("Networking", all[0].TopicName)
	s.Equal(1, all[0].WeekNumber)
	s.Equal(2, all[1].WeekNumber)
	s.Equal("Containers", all[2].TopicName)

	week := 1
	filtered, err := s.progressRepo.ListEntries(ctx, userID, rm.ID, &week)
	s.Require().NoError(err)
	s.Len(filtered, 2)
}

func (s *RepoIntegrationTestSuite) Test_Weekly_Upsert() {
	ctx := context.Background()
	userID := uuid.New()
	rm := s.seedRoadmap(userID, time.Now().UTC(), "Go")
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	save := func(hours float64) *progress.Weekly {
		now := time.Now().UTC()
		w, err := s.progressRepo.UpsertWeekly(ctx, &progress.Weekly{
			ID: uuid.New(), UserID: userID, RoadmapID: rm.ID, WeekNumber: 1, WeekStartDate: &start,
			TotalHoursStudied: hours, TopicsCompleted: 1, CreatedAt: now, UpdatedAt: now,
		})
		s.Require().NoError(err)
		return w
	}

	first := save(4)
	second := save(7.5)
	s.Equal(first.ID, second.ID)
	s.Equal(7.5, second.TotalHoursStudied)

	list, err := s.progressRepo.ListWeekly(ctx, userID, rm.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().NotNil(list[0].WeekStartDate)
	s.Equal(start.Format(time.DateOnly), list[0].WeekStartDate.Format(time.DateOnly))
}
