package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockanalyzer/clients/http_client"
	kafka_client "stockanalyzer/clients/kafka"
	mongo_client "stockanalyzer/clients/mongo"
	rabbitmq_client "stockanalyzer/clients/rabbitmq"
	redis_client "stockanalyzer/clients/redis"
	"stockanalyzer/config"
	"stockanalyzer/controllers"
	"stockanalyzer/middleware"
	"stockanalyzer/routes"
	"stockanalyzer/services"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func setupSentry(cfg config.Config) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.SentrySampleRate,
	}); err != nil {
		zap.L().Error("Sentry initialization failed: ", zap.Any("error", err.Error()))
	}
}

// GracefulShutdown stops the refresher and drains the server on SIGINT or
// SIGTERM.
func GracefulShutdown(server *http.Server, refresher *time.Ticker) {
	stopper := make(chan os.Signal, 1)
	signal.Notify(stopper, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stopper
		zap.L().Info("Shutting down gracefully...")

		refresher.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			zap.L().Error("Server shutdown failed", zap.Error(err))
			return
		}
		zap.L().Info("Server exited gracefully")
	}()
}

// startWatchlistRefresher re-scores saved symbols daily so the stored
// scores follow the market.
func startWatchlistRefresher(watchlist services.WatchlistServiceI) *time.Ticker {
	ticker := time.NewTicker(24 * time.Hour)

	go func() {
		for t := range ticker.C {
			zap.L().Info("Watchlist refresher tick at: ", zap.String("time", t.String()))
			watchlist.RefreshScores(context.Background())
		}
	}()
	return ticker
}

func main() {
	zapConfig := zap.NewProductionConfig()
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)

	cfg := config.Load()
	setupSentry(cfg)

	httpClient := http_client.NewClient(cfg.Providers)
	cache := redis_client.NewCache(context.Background(), cfg.Redis)
	kafkaProducer := kafka_client.NewProducer(cfg.Kafka)
	rabbitPublisher := rabbitmq_client.NewPublisher(cfg.Rabbit)

	store, err := mongo_client.NewWatchlistStore(context.Background(), cfg.Mongo)
	if err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
	}

	publishers := []services.EventPublisher{}
	if kafkaProducer != nil {
		publishers = append(publishers, kafkaProducer)
	}
	if rabbitPublisher != nil {
		publishers = append(publishers, rabbitPublisher)
	}

	analyzer := services.NewAnalyzeService(httpClient)
	scanner := services.NewScanService(analyzer, publishers...)
	watchlist := services.NewWatchlistService(store, analyzer)
	recommender := services.NewRecommendService(httpClient, rand.New(rand.NewSource(time.Now().UnixNano())))
	discovery := services.NewDiscoverService(httpClient, rand.New(rand.NewSource(time.Now().UnixNano())))

	stockController := controllers.NewStockController(
		analyzer,
		services.NewQuoteService(httpClient),
		scanner,
		discovery,
		services.NewPerformanceService(httpClient),
		services.NewSearchService(httpClient),
		services.NewTickerService(httpClient),
		cache,
	)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(sentrygin.New(sentrygin.Options{}))
	router.Use(middleware.CORSMiddleware())

	routes.Routes(router, routes.Controllers{
		Health:    controllers.NewHealthController(cfg.Providers),
		Stocks:    stockController,
		Watchlist: controllers.NewWatchlistController(watchlist),
		Recommend: controllers.NewRecommendController(recommender),
		Files:     controllers.NewFileController(services.NewFileService(scanner, cfg.CloudinaryURL)),
	})

	refresher := startWatchlistRefresher(watchlist)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	GracefulShutdown(server, refresher)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Error starting server: %v", err)
	}

	kafkaProducer.Close()
	rabbitPublisher.Close()
	cache.Close()
	store.Close(context.Background())
}
