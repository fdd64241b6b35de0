package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	roadmapUC "github.com/khoahotran/studyplan/internal/application/usecase/roadmap"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type RoadmapHandler struct {
	generateUseCase *roadmapUC.GenerateRoadmapUseCase
	getUseCase      *roadmapUC.GetRoadmapUseCase
	listUseCase     *roadmapUC.ListRoadmapsUseCase
	logger          logger.Logger
}

func NewRoadmapHandler(
	generateUC *roadmapUC.GenerateRoadmapUseCase,
	getUC *roadmapUC.GetRoadmapUseCase,
	listUC *roadmapUC.ListRoadmapsUseCase,
	log logger.Logger,
) *RoadmapHandler {
	return &RoadmapHandler{
		generateUseCase: generateUC,
		getUseCase:      getUC,
		listUseCase:     listUC,
		logger:          log,
	}
}

func (h *RoadmapHandler) GenerateRoadmap(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	output, err := h.generateUseCase.Execute(c.Request.Context(), roadmapUC.GenerateRoadmapInput{OwnerID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, output.Roadmap)
}

func (h *RoadmapHandler) ListRoadmaps(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.listUseCase.Execute(c.Request.Context(), roadmapUC.ListRoadmapsInput{
		OwnerID: userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roadmaps": ToRoadmapSummaryDTOs(list)})
}

func (h *RoadmapHandler) GetRoadmap(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	rm, err := h.getUseCase.Execute(c.Request.Context(), roadmapUC.GetRoadmapInput{RoadmapID: roadmapID, OwnerID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rm)
}
