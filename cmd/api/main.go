package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Charbel-5/moondev-coding-challenge/internal/app"
	"github.com/Charbel-5/moondev-coding-challenge/internal/config"
	"github.com/Charbel-5/moondev-coding-challenge/internal/database"
	"github.com/Charbel-5/moondev-coding-challenge/internal/feed"
	apphttp "github.com/Charbel-5/moondev-coding-challenge/internal/http"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/handlers"
	httpmw "github.com/Charbel-5/moondev-coding-challenge/internal/http/middleware"
	"github.com/Charbel-5/moondev-coding-challenge/internal/notify"
	"github.com/Charbel-5/moondev-coding-challenge/internal/observability"
	"github.com/Charbel-5/moondev-coding-challenge/internal/repository/postgres"
	"github.com/Charbel-5/moondev-coding-challenge/internal/security"
	"github.com/Charbel-5/moondev-coding-challenge/internal/session"
	"github.com/Charbel-5/moondev-coding-challenge/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	db, err := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		logger.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	submissionRepo := postgres.NewSubmissionRepository(db)
	storeClient := storage.NewClient(cfg.StorageBaseURL, cfg.StorageServiceKey, &http.Client{Timeout: 30 * time.Second})

	hub := feed.NewHub()
	bus := feed.NewBus(hub, redisClient, logger)
	busCtx, busCancel := context.WithCancel(context.Background())
	defer busCancel()
	go bus.Run(busCtx)

	relay := notify.NewSMTPRelay(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	dispatcher := notify.NewDispatcher(relay, logger)

	submissionService := app.NewSubmissionService(submissionRepo, bus, dispatcher, logger)
	artifactService := app.NewArtifactService(storeClient, submissionRepo, cfg.SignedURLTTL)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	sessions := session.NewTracker(redisClient, cfg.SessionIdleTimeout)
	authMiddleware := httpmw.NewAuthMiddleware(jwtProvider, sessions)

	var limiter httpmw.Limiter
	if redisClient != nil {
		limiter = httpmw.NewRedisLimiter(redisClient)
	} else {
		limiter = httpmw.NewRateLimiter()
	}

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		SubmissionHandler: handlers.NewSubmissionHandler(submissionService, limiter),
		StorageHandler:    handlers.NewStorageHandler(artifactService, limiter),
		EventsHandler:     handlers.NewEventsHandler(hub, submissionService, logger),
		AuthMiddleware:    authMiddleware,
		Logger:            logger,
		RequestTimeout:    cfg.RequestTimeout,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
