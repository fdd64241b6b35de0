package generation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RoadmapDraft is the generator's roadmap after coercion and before ordering.
// EstimatedDurationWeeks is zero when the generator gave no usable value.
type RoadmapDraft struct {
	Title                  string
	Description            string
	EstimatedDurationWeeks int
	Topics                 []TopicDraft
}

type TopicDraft struct {
	TopicName          string   `json:"topic_name"`
	Description        string   `json:"description"`
	EstimatedHours     float64  `json:"estimated_hours"`
	Prerequisites      []string `json:"prerequisites"`
	LearningObjectives []string `json:"learning_objectives"`
}

type CertificationDraft struct {
	Name                 string      `json:"name"`
	Provider             string      `json:"provider"`
	Description          string      `json:"description"`
	DifficultyLevel      string      `json:"difficulty_level"`
	EstimatedStudyHours  looseNumber `json:"estimated_study_hours"`
	RecommendationReason string      `json:"recommendation_reason"`
	Priority             looseNumber `json:"priority"`
	Category             string      `json:"category"`
	WebsiteURL           string      `json:"website_url"`
}

// looseNumber accepts a JSON number or a numeric string. Anything else decodes as absent.
type looseNumber struct {
	Value float64
	Valid bool
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	*n = looseNumber{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseNumber{Value: f, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = looseNumber{Value: f, Valid: true}
		}
	}
	return nil
}

// Int returns the value when it is a whole number.
func (n looseNumber) Int() (int, bool) {
	if !n.Valid || n.Value != math.Trunc(n.Value) || math.IsInf(n.Value, 0) {
		return 0, false
	}
	return int(n.Value), true
}
