package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/studyplan/internal/application/usecase/profile"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	logger         logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		logger:         log,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{OwnerID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, output.Profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}

	input := profileUC.UpdateProfileInput{
		OwnerID:        userID,
		Background:     req.Background,
		CurrentSkills:  req.CurrentSkills,
		LearningGoals:  req.LearningGoals,
		HoursPerWeek:   req.HoursPerWeek,
		LearningStyle:  req.LearningStyle,
		TargetIndustry: req.TargetIndustry,
	}
	output, err := h.profileUseCase.ExecuteUpdateProfile(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, output.Profile)
}
