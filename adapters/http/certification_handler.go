package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	certUC "github.com/khoahotran/studyplan/internal/application/usecase/certification"
	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type CertificationHandler struct {
	listUseCase      *certUC.ListCertificationsUseCase
	recommendUseCase *certUC.RecommendCertificationsUseCase
	statusUseCase    *certUC.UpdateStatusUseCase
	logger           logger.Logger
}

func NewCertificationHandler(
	listUC *certUC.ListCertificationsUseCase,
	recommendUC *certUC.RecommendCertificationsUseCase,
	statusUC *certUC.UpdateStatusUseCase,
	log logger.Logger,
) *CertificationHandler {
	return &CertificationHandler{
		listUseCase:      listUC,
		recommendUseCase: recommendUC,
		statusUseCase:    statusUC,
		logger:           log,
	}
}

// ListRecommended returns the user's certifications. With ?generate=true an empty list
// triggers a recommendation from the latest roadmap first.
func (h *CertificationHandler) ListRecommended(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	list, err := h.listUseCase.Execute(c.Request.Context(), certUC.ListInput{
		UserID:          userID,
		GenerateIfEmpty: c.Query("generate") == "true",
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, CertificationListDTO{Certifications: list, Count: len(list)})
}

func (h *CertificationHandler) Recommend(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req RecommendCertificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.NewInvalidInput("invalid JSON body for recommendation", err))
		return
	}

	list, err := h.recommendUseCase.Execute(c.Request.Context(), certUC.RecommendInput{
		UserID:    userID,
		RoadmapID: req.RoadmapID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, CertificationListDTO{Certifications: list, Count: len(list)})
}

func (h *CertificationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateCertificationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("status is required", err))
		return
	}

	uc, err := h.statusUseCase.Execute(c.Request.Context(), certUC.UpdateStatusInput{
		ID:     id,
		UserID: userID,
		Status: req.Status,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, uc)
}
