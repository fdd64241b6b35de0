package certification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/studyplan/adapters/event"
	"github.com/khoahotran/studyplan/adapters/persistence/memory"
	"github.com/khoahotran/studyplan/internal/application/generation"
	"github.com/khoahotran/studyplan/internal/application/reconcile"
	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type stubClient struct{ reply string }

func (c stubClient) Complete(context.Context, service.CompletionRequest) (string, error) {
	return c.reply, nil
}

const certReply = `Here you go: {"certifications":[
	{"name":"AWS Solutions Architect","provider":"AWS","priority":5,"recommendation_reason":"cloud"},
	{"name":"CKA","provider":"CNCF","priority":9}
]}`

type fixture struct {
	store     *memory.Store
	recommend *RecommendCertificationsUseCase
	list      *ListCertificationsUseCase
	update    *UpdateStatusUseCase
	user      uuid.UUID
	roadmapID uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()
	store := memory.NewStore()
	user := uuid.New()

	require.NoError(t, store.Profiles().Upsert(ctx, &profile.Profile{OwnerID: user, HoursPerWeek: 5, LearningGoals: "cloud"}))
	rmID := uuid.New()
	require.NoError(t, store.Roadmaps().Create(ctx, &roadmap.Roadmap{
		ID: rmID, OwnerID: user, Title: "Cloud", EstimatedDurationWeeks: 1, CreatedAt: time.Now(),
		Topics: []roadmap.Topic{{ID: uuid.New(), RoadmapID: rmID, Name: "AWS", OrderIndex: 1, EstimatedHours: 5}},
	}))

	recommender := generation.NewCertificationRecommender(stubClient{reply: certReply}, generation.NewCoercer(log), generation.DefaultConfig(), log)
	rec := reconcile.NewReconciler(store.Roadmaps(), store.Certifications(), log)
	recommend := NewRecommendCertificationsUseCase(store.Profiles(), store.Roadmaps(), recommender, rec, event.NewLogPublisher(log), log)

	return fixture{
		store:     store,
		recommend: recommend,
		list:      NewListCertificationsUseCase(store.Certifications(), recommend),
		update:    NewUpdateStatusUseCase(store.Certifications()),
		user:      user,
		roadmapID: rmID,
	}
}

func TestRecommend_RerunKeepsCompletedStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	views, err := f.recommend.Execute(ctx, RecommendInput{UserID: f.user, RoadmapID: &f.roadmapID})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1, views[1].Priority)
	require.NotNil(t, views[0].RoadmapID)
	assert.Equal(t, f.roadmapID, *views[0].RoadmapID)

	done, err := f.update.Execute(ctx, UpdateStatusInput{ID: views[0].ID, UserID: f.user, Status: "completed"})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	again, err := f.recommend.Execute(ctx, RecommendInput{UserID: f.user})
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, certification.StatusCompleted, again[0].Status)
	assert.Equal(t, views[0].CertificationID, again[0].CertificationID)
	assert.Equal(t, 2, f.store.CertificationCount())
}

func TestList_GeneratesWhenEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plain, err := f.list.Execute(ctx, ListInput{UserID: f.user})
	require.NoError(t, err)
	assert.Empty(t, plain)

	list, err := f.list.Execute(ctx, ListInput{UserID: f.user, GenerateIfEmpty: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AWS Solutions Architect", list[0].Certification.Name)
}

func TestRecommend_WithoutRoadmap(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()
	require.NoError(t, f.store.Profiles().Upsert(context.Background(), &profile.Profile{OwnerID: other, HoursPerWeek: 3}))

	_, err := f.recommend.Execute(context.Background(), RecommendInput{UserID: other})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.recommend.Execute(context.Background(), RecommendInput{UserID: other, RoadmapID: &f.roadmapID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	views, err := f.recommend.Execute(ctx, RecommendInput{UserID: f.user})
	require.NoError(t, err)
	id := views[0].ID

	started, err := f.update.Execute(ctx, UpdateStatusInput{ID: id, UserID: f.user, Status: "in_progress"})
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)

	_, err = f.update.Execute(ctx, UpdateStatusInput{ID: id, UserID: f.user, Status: "paused"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.update.Execute(ctx, UpdateStatusInput{ID: id, UserID: uuid.New(), Status: "skipped"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
