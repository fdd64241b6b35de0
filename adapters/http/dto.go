package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
)

// Profile

type UpdateProfileRequest struct {
	Background     string   `json:"background"`
	CurrentSkills  []string `json:"current_skills"`
	LearningGoals  string   `json:"learning_goals"`
	HoursPerWeek   int      `json:"time_availability_hours_per_week" binding:"required"`
	LearningStyle  string   `json:"preferred_learning_style"`
	TargetIndustry string   `json:"target_industry"`
}

// Roadmap

type RoadmapSummaryDTO struct {
	ID                     uuid.UUID `json:"id"`
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	EstimatedDurationWeeks int       `json:"estimated_duration_weeks"`
	TopicCount             int       `json:"topic_count"`
	CreatedAt              time.Time `json:"created_at"`
}

func ToRoadmapSummaryDTOs(list []*roadmap.Summary) []RoadmapSummaryDTO {
	out := make([]RoadmapSummaryDTO, len(list))
	for i, s := range list {
		out[i] = RoadmapSummaryDTO{
			ID:                     s.ID,
			Title:                  s.Title,
			Description:            s.Description,
			EstimatedDurationWeeks: s.EstimatedDurationWeeks,
			TopicCount:             s.TopicCount,
			CreatedAt:              s.CreatedAt,
		}
	}
	return out
}

// Certification

type RecommendCertificationsRequest struct {
	RoadmapID *uuid.UUID `json:"roadmap_id"`
}

type UpdateCertificationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CertificationListDTO struct {
	Certifications []*certification.UserCertificationView `json:"certifications"`
	Count          int                                     `json:"count"`
}

// Progress

type RecordProgressRequest struct {
	RoadmapID            uuid.UUID `json:"roadmap_id" binding:"required"`
	TopicID              uuid.UUID `json:"roadmap_topic_id" binding:"required"`
	WeekNumber           int       `json:"week_number" binding:"required"`
	HoursStudied         float64   `json:"hours_studied"`
	CompletionPercentage int       `json:"completion_percentage"`
	Notes                string    `json:"notes"`
}

type RecordWeeklyRequest struct {
	RoadmapID         uuid.UUID `json:"roadmap_id" binding:"required"`
	WeekNumber        int       `json:"week_number" binding:"required"`
	WeekStartDate     string    `json:"week_start_date"`
	TotalHoursStudied float64   `json:"total_hours_studied"`
	TopicsCompleted   int       `json:"topics_completed"`
	Notes             string    `json:"notes"`
}
