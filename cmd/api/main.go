package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"art-advisor/internal/config"
	"art-advisor/internal/db"
	"art-advisor/internal/email"
	apihttp "art-advisor/internal/http"
	"art-advisor/internal/llm"
	"art-advisor/internal/repository"
	"art-advisor/internal/scheduler"
	"art-advisor/internal/service"
	"art-advisor/internal/source"
	"art-advisor/internal/supervisor"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	loc, _ := cfg.Location()
	hour, minute, _ := cfg.ScheduleClock()

	if cfg.MigrationsEnabled {
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, running without cache and trigger limits", zap.Error(err))
			_ = client.Close()
		} else {
			redisClient = client
			defer redisClient.Close()
		}
		cancel()
	}

	tasteRepo := repository.NewPgTasteRepository(pool)
	artworkRepo := repository.NewPgArtworkRepository(pool)
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMVisionModel, cfg.LLMTimeout, zap.NewStdLog(logger.Named("llm")))

	sources, err := source.FromConfig(ctx, cfg, redisClient, logger)
	if err != nil {
		logger.Fatal("candidate sources", zap.Error(err))
	}
	curator, err := service.NewCurator(cfg.CuratorMode, llmClient, service.CuratorOptions{
		MaxCandidates: cfg.CuratorMaxCandidates,
		MaxImages:     cfg.VisionMaxImages,
		TitleLanguage: cfg.TitleLanguage,
	}, logger)
	if err != nil {
		logger.Fatal("curator", zap.Error(err))
	}
	pipeline := service.NewPipeline(
		tasteRepo,
		artworkRepo,
		service.NewQuerySynthesizer(llmClient, cfg.ThemedQueryEnabled, logger),
		sources,
		curator,
		service.PipelineConfig{
			TopTags:       cfg.TopTags,
			SearchLimit:   cfg.SearchLimit,
			MaxSelections: cfg.MaxSelections,
			StageTimeout:  cfg.StageTimeout,
			Location:      loc,
		},
		logger,
	)

	alerts := email.NewDisabledSender("email alerts not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			To:       cfg.AlertEmailTo,
			UseTLS:   cfg.SMTPUseTLS,
		})
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			alerts = sender
		}
	}
	runner := scheduler.NewRunner(pipeline, alerts, cfg.RunTimeout, logger)

	jwtSvc := service.NewJWTService(cfg.AdminJWTSecret, 0)
	if !jwtSvc.Enabled() {
		logger.Warn("admin jwt secret not configured, manual trigger disabled")
	}
	limiter := service.NewRedisTriggerRateLimiter(redisClient, cfg.TriggerWindow, cfg.TriggerLimit)

	feedback := service.NewFeedbackService(artworkRepo, tasteRepo, logger)
	router := apihttp.NewRouter(
		logger,
		apihttp.NewArtworkHandler(logger, feedback, loc),
		apihttp.NewCurationHandler(logger, runner, limiter),
		jwtSvc,
		cfg.CORSAllowedOrigins,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	tree := supervisor.NewTree("art-advisor", logger)
	tree.Add(supervisor.NewHTTPServerService(server, 10*time.Second))
	if cfg.SchedulerEnabled {
		tree.Add(scheduler.NewDaily(runner, hour, minute, loc, logger))
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Bool("scheduler", cfg.SchedulerEnabled),
		zap.String("schedule", cfg.CurationSchedule),
		zap.String("curator_mode", cfg.CuratorMode),
	)

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()
	if err := runner.Shutdown(shutdownCtx); err != nil {
		logger.Warn("curation runs still in flight at shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
