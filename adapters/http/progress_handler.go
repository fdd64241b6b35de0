package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	progressUC "github.com/khoahotran/studyplan/internal/application/usecase/progress"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type ProgressHandler struct {
	aggregator *progressUC.Aggregator
	logger     logger.Logger
}

func NewProgressHandler(aggregator *progressUC.Aggregator, log logger.Logger) *ProgressHandler {
	return &ProgressHandler{aggregator: aggregator, logger: log}
}

func (h *ProgressHandler) RecordTopicProgress(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for progress", err))
		return
	}

	entry, err := h.aggregator.Record(c.Request.Context(), progressUC.RecordInput{
		UserID:               userID,
		RoadmapID:            req.RoadmapID,
		TopicID:              req.TopicID,
		WeekNumber:           req.WeekNumber,
		HoursStudied:         req.HoursStudied,
		CompletionPercentage: req.CompletionPercentage,
		Notes:                req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *ProgressHandler) ListRoadmapProgress(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "roadmapId")
	if !ok {
		return
	}

	var week *int
	if raw := c.Query("week_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(apperror.NewInvalidInput("week_number must be an integer", err))
			return
		}
		week = &n
	}

	entries, err := h.aggregator.ListEntries(c.Request.Context(), userID, roadmapID, week)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": entries})
}

func (h *ProgressHandler) RecordWeeklyProgress(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req RecordWeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for weekly progress", err))
		return
	}

	var start *time.Time
	if req.WeekStartDate != "" {
		t, err := time.Parse(time.DateOnly, req.WeekStartDate)
		if err != nil {
			c.Error(apperror.NewInvalidInput("week_start_date must be YYYY-MM-DD", err))
			return
		}
		start = &t
	}

	weekly, err := h.aggregator.RecordWeekly(c.Request.Context(), progressUC.RecordWeeklyInput{
		UserID:            userID,
		RoadmapID:         req.RoadmapID,
		WeekNumber:        req.WeekNumber,
		WeekStartDate:     start,
		TotalHoursStudied: req.TotalHoursStudied,
		TopicsCompleted:   req.TopicsCompleted,
		Notes:             req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, weekly)
}

func (h *ProgressHandler) ListWeeklyProgress(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "roadmapId")
	if !ok {
		return
	}

	list, err := h.aggregator.ListWeekly(c.Request.Context(), userID, roadmapID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"weekly_progress": list})
}
