package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"benchcoach/internal/bot"
	"benchcoach/internal/cache"
	"benchcoach/internal/calibrate"
	"benchcoach/internal/config"
	"benchcoach/internal/db"
	"benchcoach/internal/factor"
	"benchcoach/internal/handler"
	"benchcoach/internal/history"
	"benchcoach/internal/job"
	"benchcoach/internal/ml/ensemble"
	"benchcoach/internal/ml/training"
	"benchcoach/internal/provider"
	"benchcoach/internal/scoring"
	"benchcoach/internal/service"
	"benchcoach/internal/weights"
	"benchcoach/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "benchcoach/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newHistoryRepoFunc     = history.NewRepository
	loadWeightsFunc        = weights.Load
	newPredictorFunc       = ensemble.NewPredictor
	newScoringServiceFunc  = service.NewScoringService
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           BenchCoach API
// @version         1.0
// @description     Daily fantasy baseball sit/start recommendations.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	if _, err := initPostgresFunc(ctx); err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// History store, migrations run only when Postgres is configured
	var historyRepo *history.Repository
	if db.Pool != nil {
		historyRepo = newHistoryRepoFunc(db.Pool, tracer)
		if err := historyRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Weights, models, slate feed
	weightConfig := loadWeightsFunc(cfg.ConfigDir)
	predictor := newPredictorFunc(cfg.ModelDir)
	predictor.Load()
	slates := provider.NewFileSlateProvider(tracer, cfg.DataDir)

	// Scoring service; history and cache stay nil when not configured
	var scoreStore service.HistoryStore
	if historyRepo != nil {
		scoreStore = historyRepo
	}
	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}
	scoringService := newScoringServiceFunc(
		tracer, factor.Default(), weightConfig, scoring.NewEngine(), predictor,
		slates, scoreStore, redisClient,
	)

	// Calibration, training and outcome resolution need labeled history
	var calibrationRunner handler.CalibrationRunner
	var trainingRunner handler.TrainingRunner
	if historyRepo != nil {
		calibrator := calibrate.New(calibrate.Config{
			MinSamples: cfg.CalibrateMinSamples,
			Timeout:    time.Duration(cfg.CalibrateTimeoutSecs) * time.Second,
		})
		calibrationRunner = calibrate.NewService(tracer, historyRepo, weightConfig, calibrator, cfg.CalibrateWindowDays)

		trainingService := training.NewService(tracer, historyRepo, weightConfig, predictor, training.Config{
			TrainWindowDays: cfg.TrainWindowDays,
			MinTrainSamples: cfg.MinTrainSamples,
		})
		trainingRunner = trainingService

		outcomeService := service.NewOutcomeService(tracer, slates, historyRepo)
		resolver := job.NewOutcomeResolverJob(tracer, outcomeService, time.Duration(cfg.ResolvePollSecs)*time.Second)
		go resolver.Start(ctx)

		trainingJob := job.NewTrainingJob(tracer, trainingService, cfg.TrainHourUTC)
		go trainingJob.Start(ctx)
	}

	// Daily slate scoring
	scoringJob := job.NewScoringJob(tracer, scoringService, cfg.ScoreHourUTC)
	go scoringJob.Start(ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(scoringService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, scoringService, weightConfig, calibrationRunner, trainingRunner)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("benchcoach"))
	r.Use(handler.APIKeyAuth(cfg.APIKey))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
