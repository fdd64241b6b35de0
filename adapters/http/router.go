package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/studyplan/pkg/auth"
	"github.com/khoahotran/studyplan/pkg/logger"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string

	Resolver      auth.TokenResolver
	Profile       *ProfileHandler
	Roadmap       *RoadmapHandler
	Certification *CertificationHandler
	Progress      *ProgressHandler
}

func NewRouter(cfg RouterConfig, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(ErrorMiddleware(log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		private := api.Group("/")
		private.Use(AuthMiddleware(cfg.Resolver, log))
		{
			private.GET("/profile", cfg.Profile.GetProfile)
			private.PUT("/profile", cfg.Profile.UpdateProfile)

			roadmaps := private.Group("/roadmaps")
			{
				roadmaps.POST("/generate", cfg.Roadmap.GenerateRoadmap)
				roadmaps.GET("", cfg.Roadmap.ListRoadmaps)
				roadmaps.GET("/:id", cfg.Roadmap.GetRoadmap)
			}

			certs := private.Group("/certifications")
			{
				certs.GET("/recommended", cfg.Certification.ListRecommended)
				certs.POST("/recommend", cfg.Certification.Recommend)
				certs.PATCH("/:id/status", cfg.Certification.UpdateStatus)
			}

			progress := private.Group("/progress")
			{
				progress.POST("/topic", cfg.Progress.RecordTopicProgress)
				progress.GET("/roadmap/:roadmapId", cfg.Progress.ListRoadmapProgress)
				progress.POST("/weekly", cfg.Progress.RecordWeeklyProgress)
				progress.GET("/weekly/:roadmapId", cfg.Progress.ListWeeklyProgress)
			}
		}
	}

	return router
}
