package generation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []service.CompletionRequest
}

func (c *scriptedClient) Complete(_ context.Context, req service.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", nil
	}
	out := c.replies[0]
	c.replies = c.replies[1:]
	return out, nil
}

func sampleProfile() profile.Profile {
	return profile.Profile{
		OwnerID:        uuid.New(),
		Background:     "Backend developer",
		CurrentSkills:  []string{"Go", "SQL"},
		LearningGoals:  "Become a cloud architect",
		HoursPerWeek:   10,
		TargetIndustry: "Fintech",
	}
}

func newBuilder(client service.GenerativeClient) *RoadmapBuilder {
	log := logger.NewNop()
	return NewRoadmapBuilder(client, NewCoercer(log), DefaultConfig(), log)
}

func newRecommender(client service.GenerativeClient) *CertificationRecommender {
	log := logger.NewNop()
	return NewCertificationRecommender(client, NewCoercer(log), DefaultConfig(), log)
}

func TestBuildRoadmapPrompt_FallbacksNeverOmitFields(t *testing.T) {
	prompt := buildRoadmapPrompt(profile.Profile{HoursPerWeek: 5})

	assert.Contains(t, prompt, "Background: Not specified")
	assert.Contains(t, prompt, "Current Skills: None specified")
	assert.Contains(t, prompt, "Learning Goals: Not specified")
	assert.Contains(t, prompt, "Time Available: 5 hours per week")
	assert.Contains(t, prompt, "Learning Style: Not specified")
	assert.Contains(t, prompt, "Target Industry: Not specified")
}

func TestBuildRoadmapPrompt_IsDeterministic(t *testing.T) {
	p := sampleProfile()
	assert.Equal(t, buildRoadmapPrompt(p), buildRoadmapPrompt(p))
	assert.Contains(t, buildRoadmapPrompt(p), "Current Skills: Go, SQL")
}

func TestGenerate_OrdersTopicsDensely(t *testing.T) {
	raw := `{"title":"Cloud path","description":"d","topics":[
		{"topic_name":"Networking","estimated_hours":8,"order":7},
		{"topic_name":"Broken"},
		{"topic_name":"Containers","estimated_hours":12},
		{"topic_name":"Kubernetes","estimated_hours":20,"prerequisites":["Containers","Containers"]}
	]}`
	client := &scriptedClient{replies: []string{raw}}
	p := sampleProfile()

	r, err := newBuilder(client).Generate(context.Background(), p)

	require.NoError(t, err)
	require.Len(t, r.Topics, 3)
	for i, topic := range r.Topics {
		assert.Equal(t, i+1, topic.OrderIndex)
		assert.Equal(t, r.ID, topic.RoadmapID)
	}
	assert.Equal(t, []string{"Networking", "Containers", "Kubernetes"}, roadmap.TopicNames(r.Topics))
	assert.Equal(t, []string{"Containers"}, r.Topics[2].Prerequisites)
	assert.Equal(t, p.OwnerID, r.OwnerID)
	assert.Equal(t, raw, r.RawPayload)
	// 40 hours at 10 per week.
	assert.Equal(t, 4, r.EstimatedDurationWeeks)

	require.Len(t, client.calls, 1)
	assert.Equal(t, 2000, client.calls[0].MaxTokens)
	assert.Equal(t, 0.7, client.calls[0].Temperature)
	assert.NotEmpty(t, client.calls[0].System)
}

func TestGenerate_KeepsGeneratorDuration(t *testing.T) {
	client := &scriptedClient{replies: []string{`{"estimated_duration_weeks":9,"topics":[{"topic_name":"A","estimated_hours":1}]}`}}

	r, err := newBuilder(client).Generate(context.Background(), sampleProfile())

	require.NoError(t, err)
	assert.Equal(t, 9, r.EstimatedDurationWeeks)
	assert.Equal(t, defaultRoadmapTitle, r.Title)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *scriptedClient
		want   error
	}{
		{"client failure", &scriptedClient{err: errors.New("quota exhausted")}, apperror.ErrGenerationUnavailable},
		{"empty content", &scriptedClient{replies: []string{"   "}}, apperror.ErrGenerationUnavailable},
		{"no topics", &scriptedClient{replies: []string{`{"title":"X","topics":[]}`}}, apperror.ErrMalformedGeneration},
		{"garbage", &scriptedClient{replies: []string{"sorry"}}, apperror.ErrMalformedGeneration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newBuilder(tt.client).Generate(context.Background(), sampleProfile())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerate_DoesNotMutateProfile(t *testing.T) {
	client := &scriptedClient{replies: []string{`{"topics":[{"topic_name":"A","estimated_hours":1}]}`}}
	p := sampleProfile()
	before := p.Snapshot()

	_, err := newBuilder(client).Generate(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, before, p)
}

func TestDurationWeeks(t *testing.T) {
	assert.Equal(t, 1, durationWeeks(0, 10))
	assert.Equal(t, 1, durationWeeks(5, 10))
	assert.Equal(t, 2, durationWeeks(11, 10))
	assert.Equal(t, 1, durationWeeks(100, 0))
}

func TestRecommend_RequiresTopics(t *testing.T) {
	client := &scriptedClient{}
	_, err := newRecommender(client).Recommend(context.Background(), sampleProfile(), nil)

	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, client.calls)
}

func TestRecommend_NormalizesItems(t *testing.T) {
	raw := `{"certifications":[
		{"name":"AWS Solutions Architect","provider":"AWS","priority":9,"difficulty_level":"Advanced","estimated_study_hours":80},
		{"name":"CKA","provider":"CNCF","priority":3,"category":"Cloud Native"},
		{"name":"Terraform Associate","provider":"HashiCorp","priority":2.5,"difficulty_level":"wizard"},
		{"name":"GCP ACE","provider":"Google"}
	]}`
	client := &scriptedClient{replies: []string{raw}}
	topics := []roadmap.Topic{{Name: "Networking"}, {Name: "Kubernetes"}}

	recs, err := newRecommender(client).Recommend(context.Background(), sampleProfile(), topics)

	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, 1, recs[0].Priority, "out of range priority defaults to lowest")
	assert.Equal(t, certification.DifficultyAdvanced, recs[0].Certification.DifficultyLevel)
	assert.Equal(t, 80, recs[0].Certification.EstimatedStudyHours)
	assert.Equal(t, certification.DefaultCategory, recs[0].Certification.Category)

	assert.Equal(t, 3, recs[1].Priority)
	assert.Equal(t, "Cloud Native", recs[1].Certification.Category)

	assert.Equal(t, 1, recs[2].Priority, "fractional priority defaults to lowest")
	assert.Equal(t, certification.DifficultyIntermediate, recs[2].Certification.DifficultyLevel)

	assert.Equal(t, 1, recs[3].Priority, "missing priority defaults to lowest")

	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0].Prompt, "Roadmap Topics: Networking, Kubernetes")
	assert.Equal(t, 1500, client.calls[0].MaxTokens)
}

func TestRecommend_EmptyListIsNotAnError(t *testing.T) {
	client := &scriptedClient{replies: []string{`{"certifications":[]}`}}
	recs, err := newRecommender(client).Recommend(context.Background(), sampleProfile(), []roadmap.Topic{{Name: "Go"}})

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommend_ClientFailure(t *testing.T) {
	client := &scriptedClient{err: context.DeadlineExceeded}
	_, err := newRecommender(client).Recommend(context.Background(), sampleProfile(), []roadmap.Topic{{Name: "Go"}})

	assert.ErrorIs(t, err, apperror.ErrGenerationUnavailable)
}
