package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/cache"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/server"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/microservices/http-api/validation"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterBindings(); err != nil {
		log.Fatalf("could not register validators: %v", err)
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db, logger); err != nil {
		log.Fatalf("database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// rating cache is optional, the API computes ratings directly without it
	var ratingCache service.RatingCache
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRatingCache(ctx, cfg.RedisURL, cfg.RatingCacheTTL)
		cancel()
		if err != nil {
			logger.Warn("rating_cache_disabled", "error", err.Error())
		} else {
			defer rc.Close()
			ratingCache = rc
			logger.Info("rating_cache_enabled", "ttl", cfg.RatingCacheTTL)
		}
	}

	var mail mailer.Mailer = mailer.NewLogMailer(logger)
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	}
	mailQueue := mailer.NewQueue(cfg.MailWorkers, cfg.MailWorkers*16, logger)
	mailQueue.Start()

	// repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// services
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(userRepo, tokens, mail, logger, service.WithDispatcher(mailQueue.Dispatch))
	ratingService := service.NewRatingService(reviewRepo, ratingCache, logger)

	handler.DefaultPageSize = cfg.PageSize
	router := server.NewRouter(server.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserHandler(service.NewUserService(userRepo, logger)),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Genre:    handler.NewGenreHandler(service.NewGenreService(genreRepo)),
		Title:    handler.NewTitleHandler(service.NewTitleService(titleRepo, genreRepo, categoryRepo, ratingService, logger)),
		Review:   handler.NewReviewHandler(service.NewReviewService(reviewRepo, titleRepo, ratingService, logger)),
		Comment:  handler.NewCommentHandler(service.NewCommentService(commentRepo, reviewRepo)),
	}, server.Options{
		Logger:        logger,
		Authenticator: authService,
		SignupLimiter: middleware.NewIPRateLimiter(cfg.SignupRateLimit, cfg.SignupRateBurst),
		CORSOrigins:   cfg.CORSOrigins,
		DB:            sqlDB,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown_failed", "error", err.Error())
		}
		if err := mailQueue.Close(ctx); err != nil {
			logger.Warn("mail_queue_not_drained", "error", err.Error())
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}
