package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/imagerepo/imagerepo-api/internal/config"
	"github.com/imagerepo/imagerepo-api/internal/domain/auth"
	"github.com/imagerepo/imagerepo-api/internal/domain/image"
	"github.com/imagerepo/imagerepo-api/internal/domain/marketplace"
	"github.com/imagerepo/imagerepo-api/internal/domain/user"
	"github.com/imagerepo/imagerepo-api/internal/middleware"
	"github.com/imagerepo/imagerepo-api/internal/pkg/database"
	"github.com/imagerepo/imagerepo-api/internal/pkg/imaging"
	"github.com/imagerepo/imagerepo-api/internal/pkg/jwt"
	"github.com/imagerepo/imagerepo-api/internal/pkg/logger"
	pkgresponse "github.com/imagerepo/imagerepo-api/internal/pkg/response"
	"github.com/imagerepo/imagerepo-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Image Marketplace API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	store, err := storage.NewS3Store(storage.Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create S3 store")
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.S3Bucket).Msg("Failed to provision bucket")
		}
		cancel()
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	imageRepo := image.NewRepository(db)
	marketplaceRepo := marketplace.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService, redis)
	processor := imaging.NewProcessor(imaging.DefaultConfig())
	imageService := image.NewService(imageRepo, store, processor, cfg.MaxUploadBytes)
	marketplaceService := marketplace.NewService(marketplaceRepo, userRepo, imageRepo, store)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	imageHandler := image.NewHandler(imageService)
	marketplaceHandler := marketplace.NewHandler(marketplaceService)

	authMiddleware := middleware.Auth(jwtService)
	sellerMiddleware := middleware.RequireSeller()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/images", imageHandler.Routes(authMiddleware))
		r.Mount("/marketplace", marketplaceHandler.Routes(authMiddleware, sellerMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
