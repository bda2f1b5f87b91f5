package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"evideo/internal/compose"
	"evideo/internal/domain"
	"evideo/internal/generate"
	"evideo/internal/http/handlers"
	httpapi "evideo/internal/http/httpapi"
	"evideo/internal/infra"
	"evideo/internal/kvstore"
	"evideo/internal/platform"
	"evideo/internal/poll"
	"evideo/internal/render"
	"evideo/internal/storage"
)

// backendAdapter narrows the platform client to the orchestrator's needs.
type backendAdapter struct {
	client *platform.Client
}

func (b backendAdapter) SaveContact(ctx context.Context, employeeHash, contactHash string, project domain.ProjectInfo, snap domain.FormSnapshot) error {
	_, err := b.client.SaveContact(ctx, employeeHash, contactHash, project, snap)
	return err
}

func (b backendAdapter) TrackVideoGenerated(ctx context.Context, subDomain, projectSlug, contactHash string) error {
	return b.client.TrackVideoGenerated(ctx, subDomain, projectSlug, contactHash)
}

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Session store: Postgres when DATABASE_URL is set, embedded sqlite
	// otherwise.
	var store kvstore.Store
	if cfg.DatabaseURL != "" {
		pg, err := kvstore.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pg.Close()
		store = pg
	} else {
		sq, err := kvstore.NewSQLite(ctx, cfg.KVPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open kv store")
		}
		defer sq.Close()
		store = sq
	}

	renderClient, err := render.NewClient(render.Options{
		APIKey:   cfg.RenderAPIKey,
		BaseURL:  cfg.RenderBaseURL,
		Function: cfg.RenderFunction,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build render client")
	}

	composer, err := compose.NewComposer(compose.Options{
		FontPath: cfg.FontPath,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build composer")
	}

	// Artifact storage: S3 when a bucket is configured, local filesystem
	// otherwise.
	var backend storage.Backend
	if cfg.S3Bucket != "" {
		s3, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build s3 store")
		}
		backend = s3
	} else {
		fs, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build file store")
		}
		backend = fs
	}
	uploads := storage.NewService(backend, cfg.StorageRootPath)

	platformClient, err := platform.NewClient(platform.Options{
		BaseURL:         cfg.PlatformBaseURL,
		TrackingBaseURL: cfg.TrackingBaseURL,
		Logger:          &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build platform client")
	}

	orch, err := generate.New(generate.Options{
		Store:    store,
		Render:   renderClient,
		Composer: composer,
		Uploads:  uploads,
		Backend:  backendAdapter{client: platformClient},
		Logger:   &logger,
		Poll:     poll.Config{Interval: cfg.PollInterval, MaxAttempts: cfg.PollMaxTries},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build orchestrator")
	}
	defer orch.Close()

	app := handlers.NewApp(orch, platformClient, logger)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
