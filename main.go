package main

import (
	"context"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkinglot/config"
	"parkinglot/cron"
	"parkinglot/database"
	"parkinglot/database/repository"
	"parkinglot/handlers"
	"parkinglot/middleware"
	"parkinglot/routes"
	"parkinglot/services/events"
	"parkinglot/services/parking"
	"parkinglot/services/recognition"
	"parkinglot/services/settings"
	"parkinglot/services/stats"
	"parkinglot/services/storage"
	"parkinglot/services/tasks"
	"parkinglot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	db := database.DB()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	repos := repository.NewMongoRepos(db)
	if err := repos.EnsureIndexes(ctx); err != nil {
		logger.Sugar().Fatalf("main: failed to create indexes: %v", err)
	}
	txRunner := database.NewMongoTxRunner(database.MongoClient)

	// change feed for the dashboard.
	var (
		publisher  events.Publisher
		subscriber events.Subscriber
	)
	switch config.AppConfig.ChangeNotifier {
	case "redis":
		client := utils.GetCacheClient()
		bus := events.NewRedisBus(client, events.DefaultChannel, logger)
		publisher, subscriber = bus, bus
	case "local":
		bus := events.NewLocalBus()
		publisher, subscriber = bus, bus
	default:
		publisher = events.NopPublisher{}
		subscriber = events.NewMongoChangeStream(db, logger)
	}

	// image hosting; without credentials photos are accepted but not stored.
	var images storage.ImageStore
	if config.AppConfig.CloudinaryCloudName != "" {
		store, err := storage.NewCloudinaryStore(
			config.AppConfig.CloudinaryCloudName,
			config.AppConfig.CloudinaryAPIKey,
			config.AppConfig.CloudinaryAPISecret,
		)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize cloudinary storage: %v", err)
		}
		images = store
	} else {
		logger.Warn("Cloudinary not configured, vehicle images will not be stored")
	}

	// recognition.
	var recognizer recognition.Recognizer
	switch config.AppConfig.RecognitionProvider {
	case "gemini":
		gemini, err := recognition.NewGemini(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize gemini recognizer: %v", err)
		}
		defer gemini.Close()
		recognizer = gemini
		if ttl := config.AppConfig.RecognitionCacheTTL; ttl > 0 {
			store := recognition.NewRedisReadingStore(utils.GetCacheClient(), ttl)
			recognizer = recognition.NewCached(gemini, store, logger)
		}
	default:
		recognizer = recognition.NewSimulated(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	// services.
	settingsService := settings.NewSettingsService(repos.Settings, logger)
	parkingService := &parking.DefaultParkingService{
		Repos:       repos,
		Tx:          txRunner,
		Settings:    settingsService,
		Images:      images,
		Recognizer:  recognizer,
		Publisher:   publisher,
		Logger:      logger,
		ImageFolder: config.AppConfig.CloudinaryFolder,
	}
	statsService := stats.NewStatsService(repos, subscriber, logger)

	// background reconciliation.
	var queue tasks.Enqueuer
	if config.AppConfig.ReconcileEnabled {
		worker, err := cron.InitReconcileWorker(parkingService, config.AppConfig.ReconcileCron, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to start reconcile worker: %v", err)
		}
		defer worker.Shutdown()

		client := asynq.NewClient(cron.RedisOpt())
		defer client.Close()
		queue = client
	}

	// Redis is only probed when something uses it.
	var redisPing utils.Pinger
	if config.AppConfig.ReconcileEnabled || utils.CacheClient != nil {
		cache := utils.GetCacheClient()
		redisPing = func(ctx context.Context) error { return cache.Ping(ctx).Err() }
	}

	mongoPing := func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) }
	utils.StartHealthMonitor(ctx, time.Minute, mongoPing, redisPing)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		Parking:     handlers.NewParkingHandler(parkingService, settingsService),
		Settings:    handlers.NewSettingsHandler(settingsService),
		Stats:       handlers.NewStatsHandler(statsService),
		Recognition: handlers.NewRecognitionHandler(recognizer),
		Admin:       handlers.NewAdminHandler(parkingService, queue),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:        "0.0.0.0:" + port,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	logger.Info("Starting server",
		zap.String("addr", srv.Addr),
		zap.String("notifier", config.AppConfig.ChangeNotifier),
		zap.String("recognition", config.AppConfig.RecognitionProvider))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	// Cancel open streams before Shutdown waits on them.
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
