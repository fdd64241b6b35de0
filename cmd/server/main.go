package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/studyplan/adapters/event"
	httpAdapter "github.com/khoahotran/studyplan/adapters/http"
	"github.com/khoahotran/studyplan/adapters/llm"
	"github.com/khoahotran/studyplan/adapters/persistence"
	"github.com/khoahotran/studyplan/adapters/persistence/memory"
	"github.com/khoahotran/studyplan/internal/application/generation"
	"github.com/khoahotran/studyplan/internal/application/reconcile"
	"github.com/khoahotran/studyplan/internal/application/service"
	certUC "github.com/khoahotran/studyplan/internal/application/usecase/certification"
	profileUC "github.com/khoahotran/studyplan/internal/application/usecase/profile"
	progressUC "github.com/khoahotran/studyplan/internal/application/usecase/progress"
	roadmapUC "github.com/khoahotran/studyplan/internal/application/usecase/roadmap"
	"github.com/khoahotran/studyplan/internal/config"
	"github.com/khoahotran/studyplan/internal/domain/certification"
	"github.com/khoahotran/studyplan/internal/domain/profile"
	"github.com/khoahotran/studyplan/internal/domain/progress"
	"github.com/khoahotran/studyplan/internal/domain/roadmap"
	"github.com/khoahotran/studyplan/pkg/auth"
	"github.com/khoahotran/studyplan/pkg/logger"
	"github.com/khoahotran/studyplan/pkg/tracing"
)

const serviceName = "studyplan-api"

type repositories struct {
	profiles       profile.Repository
	roadmaps       roadmap.Repository
	certifications certification.Repository
	progress       progress.Repository
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Cannot init tracer", err)
	}
	defer shutdownTracer(context.Background())

	// Repositories
	var repos repositories
	if cfg.DB.DSN != "" {
		dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Postgres", err)
		}
		defer dbPool.Close()

		repos = repositories{
			profiles:       persistence.NewPostgresProfileRepo(dbPool, appLogger),
			roadmaps:       persistence.NewPostgresRoadmapRepo(dbPool, appLogger),
			certifications: persistence.NewPostgresCertificationRepo(dbPool, appLogger),
			progress:       persistence.NewPostgresProgressRepo(dbPool, appLogger),
		}
	} else {
		appLogger.Warn("db.dsn not set, using in-memory storage")
		store := memory.NewStore()
		repos = repositories{
			profiles:       store.Profiles(),
			roadmaps:       store.Roadmaps(),
			certifications: store.Certifications(),
			progress:       store.Progress(),
		}
	}

	// Events
	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		publisher = kafkaClient
	} else {
		publisher = event.NewLogPublisher(appLogger)
	}
	defer publisher.Close()

	// Services
	llmClient, err := llm.NewGenerativeClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init LLM client", err)
	}
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	genCfg := generation.DefaultConfig()
	coercer := generation.NewCoercer(appLogger)
	builder := generation.NewRoadmapBuilder(llmClient, coercer, genCfg, appLogger)
	recommender := generation.NewCertificationRecommender(llmClient, coercer, genCfg, appLogger)
	reconciler := reconcile.NewReconciler(repos.roadmaps, repos.certifications, appLogger)

	// Use Cases
	profileUseCase := profileUC.NewProfileUseCase(repos.profiles, appLogger)
	generateRoadmapUseCase := roadmapUC.NewGenerateRoadmapUseCase(repos.profiles, builder, reconciler, publisher, appLogger)
	getRoadmapUseCase := roadmapUC.NewGetRoadmapUseCase(repos.roadmaps)
	listRoadmapsUseCase := roadmapUC.NewListRoadmapsUseCase(repos.roadmaps)
	recommendUseCase := certUC.NewRecommendCertificationsUseCase(repos.profiles, repos.roadmaps, recommender, reconciler, publisher, appLogger)
	listCertsUseCase := certUC.NewListCertificationsUseCase(repos.certifications, recommendUseCase)
	updateStatusUseCase := certUC.NewUpdateStatusUseCase(repos.certifications)
	aggregator := progressUC.NewAggregator(repos.roadmaps, repos.progress, publisher, appLogger)

	// HTTP
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Resolver:       jwtSvc,
		Profile:        httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		Roadmap:        httpAdapter.NewRoadmapHandler(generateRoadmapUseCase, getRoadmapUseCase, listRoadmapsUseCase, appLogger),
		Certification:  httpAdapter.NewCertificationHandler(listCertsUseCase, recommendUseCase, updateStatusUseCase, appLogger),
		Progress:       httpAdapter.NewProgressHandler(aggregator, appLogger),
	}, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", err)
	}
}
