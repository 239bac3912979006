package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"motiv8/internal/adapter/api"
	"motiv8/internal/adapter/api/handler"
	apimiddleware "motiv8/internal/adapter/api/middleware"
	"motiv8/internal/adapter/api/router"
	"motiv8/internal/adapter/repository"
	"motiv8/internal/domain/service"
	"motiv8/internal/infrastructure/firebase"
	"motiv8/internal/infrastructure/presence"
	"motiv8/internal/infrastructure/ratelimit"
	"motiv8/internal/infrastructure/scheduler"
	"motiv8/internal/infrastructure/storage"
	"motiv8/internal/infrastructure/websocket"
	"motiv8/internal/usecase"
	"motiv8/pkg/config"
	"motiv8/pkg/logger"
	"motiv8/pkg/response"
)

const (
	shutdownTimeout  = 10 * time.Second
	rateLimitIdleTTL = 10 * time.Minute
)

func clientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
	}
	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			logger.Fatal("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
	}

	logger.Info("Using application default credentials")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		stores   repository.Stores
		verifier apimiddleware.TokenVerifier
		minter   handler.DevTokenMinter
		probe    handler.StorageProbe
		opts     []option.ClientOption
	)

	if cfg.FirebaseProject != "" {
		opts = clientOptions(cfg)

		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase: %v", err)
		}

		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Auth: %v", err)
		}

		firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
		verifier = firebaseAuthClient
		minter = firebaseAuthClient
	} else if cfg.IsDevelopment() {
		logger.Warn("FIREBASE_PROJECT_ID not set, trusting raw bearer tokens as user ids")
		verifier = apimiddleware.DevVerifier{}
	} else {
		logger.Fatal("FIREBASE_PROJECT_ID is required outside development")
	}

	switch cfg.StorageDriver {
	case config.StorageDriverFirestore:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			logger.Fatal("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		stores = repository.NewFirestoreStores(firestoreClient)
		probe = repository.Ping(firestoreClient)
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		stores = repository.NewMemoryStores(repository.NewMemoryStore())
	}

	rng := service.NewRandomizer()
	registry := presence.NewRegistry(cfg.MatchEventWindow)

	wsManager := websocket.NewManager(logger.Named("websocket"))
	wsManager.Start(ctx)

	catalogUseCase := usecase.NewCatalogUseCase(stores.Catalog, logger.Named("catalog"))
	missionUseCase := usecase.NewMissionUseCase(stores.Catalog, stores.MissionStates, stores.Stats, rng, logger.Named("missions"))
	matchUseCase := usecase.NewMatchUseCase(
		stores.Matches,
		stores.MissionStates,
		stores.Stats,
		registry,
		wsManager,
		cfg.PropagationConcurrency,
		logger.Named("matches"),
	)
	rewardUseCase := usecase.NewRewardUseCase(stores.MissionStates, matchUseCase, logger.Named("rewards"))
	levelRewardUseCase := usecase.NewLevelRewardUseCase(stores.Stats, rng, logger.Named("level-rewards"))
	statsUseCase := usecase.NewStatsUseCase(stores.Stats)

	if cfg.CatalogBucket != "" && cfg.CatalogObject != "" {
		if err := seedCatalog(ctx, cfg, catalogUseCase, opts); err != nil {
			logger.Error("Catalog seed failed: %v", err)
		}
	}

	limiter := ratelimit.NewRateLimiter(
		ratelimit.DefaultLimits(cfg.ProgressRatePerMinute),
		ratelimit.Limit{PerMinute: 60, Burst: 20},
	)

	jobs, err := scheduler.New(logger.Named("scheduler"))
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}
	if err := jobs.Every("match-event-sweep", cfg.HousekeepingInterval, func() {
		if n := registry.Sweep(); n > 0 {
			logger.Debug("Evicted %d expired match events", n)
		}
	}); err != nil {
		logger.Fatal("Failed to schedule event sweep: %v", err)
	}
	if err := jobs.Every("rate-limit-cleanup", cfg.HousekeepingInterval, func() {
		if n := limiter.Cleanup(rateLimitIdleTTL); n > 0 {
			logger.Debug("Dropped %d idle rate limit buckets", n)
		}
	}); err != nil {
		logger.Fatal("Failed to schedule rate limit cleanup: %v", err)
	}
	jobs.Start()
	defer func() {
		if err := jobs.Shutdown(); err != nil {
			logger.Error("Scheduler shutdown: %v", err)
		}
	}()

	handler.Setup(missionUseCase, rewardUseCase, matchUseCase, statsUseCase, levelRewardUseCase, catalogUseCase)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = response.Error(c, err)
	}

	httpLog := logger.Named("http")
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			httpLog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	adminMiddleware := apimiddleware.NewAdminMiddleware()
	rateLimitMiddleware := apimiddleware.NewRateLimitMiddleware(limiter)

	router.Setup(e, authMiddleware, adminMiddleware, rateLimitMiddleware)
	router.SetupHealthRouter(e, handler.NewHealthHandler(cfg.StorageDriver, probe))
	router.SetupWebSocketRouter(e, handler.NewWebSocketHandler(wsManager, cfg.AllowedOrigins), authMiddleware)
	if minter != nil {
		router.SetupDevRouter(e, cfg.Environment, handler.NewDevTokenHandler(minter))
	}

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

func seedCatalog(ctx context.Context, cfg *config.Config, catalogUseCase *usecase.CatalogUseCase, opts []option.ClientOption) error {
	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.CatalogBucket, opts...)
	if err != nil {
		return err
	}
	defer storageClient.Close()

	data, err := storageClient.ReadObject(ctx, cfg.CatalogObject)
	if err != nil {
		return err
	}

	result, err := catalogUseCase.ImportCatalog(ctx, data, false)
	if err != nil {
		return err
	}

	logger.Info("Seeded %d missions from gs://%s/%s", result.Count, cfg.CatalogBucket, cfg.CatalogObject)
	return nil
}
