package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/user-directory/internal/auth"
	"github.com/vasiliy-maslov/user-directory/internal/cache"
	"github.com/vasiliy-maslov/user-directory/internal/config"
	"github.com/vasiliy-maslov/user-directory/internal/db"
	userHttp "github.com/vasiliy-maslov/user-directory/internal/handler/http"
	"github.com/vasiliy-maslov/user-directory/internal/media"
	"github.com/vasiliy-maslov/user-directory/internal/user"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.App)
	log.Info().Msg("User-directory starting...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repo, closeStorage, err := openStorage(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open storage")
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init password hasher")
	}
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init token service")
	}

	mediaService, err := openMedia(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Media.Provider).Msg("Failed to init media service")
	}

	var countCache user.CountCache
	closeCache := func() {}
	if cfg.Redis.Addr != "" {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := cache.NewRedisClient(pingCtx, cfg.Redis)
		pingCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		countCache = cache.NewRedisCounter(redisClient, cfg.Redis.CountTTL)
		closeCache = func() {
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Redis client")
			}
		}
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o750); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("Failed to create upload dir")
	}

	userSvc := user.NewService(repo, hasher, tokens, countCache)
	userHandler := userHttp.NewUserHandler(userSvc, mediaService, tokens, cfg.Upload)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(hlog.NewHandler(log.Logger))
	router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", userHttp.HandleHealth)
	userHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.App.Port).Msg("Could not listen")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	closeStorage(shutdownCtx)
	closeCache()

	log.Info().Msg("User-directory stopped gracefully")
}

func setupLogger(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "user-directory").Logger()
}

func openStorage(ctx context.Context, cfg *config.Config) (user.Repository, func(context.Context), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		if err := db.ApplyMigrations(cfg.Postgres); err != nil {
			return nil, nil, err
		}
		pg, err := db.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return user.NewRepository(pg.Pool), func(context.Context) { pg.Close() }, nil

	case config.StorageDriverMongo:
		mg, err := db.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		if err := user.EnsureMongoIndexes(ctx, mg.DB); err != nil {
			mg.Close(context.Background())
			return nil, nil, err
		}
		return user.NewMongoRepository(mg.DB), mg.Close, nil

	default:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return user.NewMemoryRepository(), func(context.Context) {}, nil
	}
}

func openMedia(ctx context.Context, cfg *config.Config) (media.Service, error) {
	if cfg.Media.Provider == config.MediaProviderS3 {
		return media.NewS3(ctx, cfg.S3)
	}
	return media.NewCloudinary(cfg.Cloudinary)
}
