package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/vikasavnish/marketaggregator/internal/api"
	"github.com/vikasavnish/marketaggregator/internal/auth"
	"github.com/vikasavnish/marketaggregator/internal/cache"
	"github.com/vikasavnish/marketaggregator/internal/config"
	"github.com/vikasavnish/marketaggregator/internal/db"
	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/metrics"
	"github.com/vikasavnish/marketaggregator/internal/options"
	"github.com/vikasavnish/marketaggregator/internal/poller"
	"github.com/vikasavnish/marketaggregator/internal/providers"
	"github.com/vikasavnish/marketaggregator/internal/router"
	"github.com/vikasavnish/marketaggregator/internal/store/archive"
	"github.com/vikasavnish/marketaggregator/internal/store/audit"
	"github.com/vikasavnish/marketaggregator/internal/subscriptions"
	"github.com/vikasavnish/marketaggregator/internal/tasks"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// no .env file is a normal deployment shape; the error is ignored
		// and configuration comes from the process environment alone
	}

	cfg := config.Load()
	log := logging.New("marketdata", cfg.LogFile)
	log.Info("starting market data aggregation service")

	auditDB, err := db.Connect(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open audit database")
	}
	auditStore, err := audit.New(auditDB, log)
	if err != nil {
		log.WithError(err).Fatal("failed to migrate audit database")
	}

	redisClient, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, poll-completion events will not be published")
		redisClient = nil
	}

	m := metrics.New()
	quoteCache := cache.New()
	subs := subscriptions.Load(cfg.SubscriptionsPath, cfg.Poller.DefaultSymbols)

	routerTable, err := router.LoadTable(cfg.Router.ConfigPath)
	if err != nil {
		log.WithError(err).Warn("failed to load router table, using defaults")
		routerTable = router.DefaultTable()
	}
	classifier := router.New(routerTable)

	equities := providers.NewEquitiesAdapter(cfg.Providers.EquitiesBaseURL, cfg.Providers.EquitiesAPIKey, log)
	crypto := providers.NewCryptoAdapter(cfg.Providers.BinanceAPIKey, cfg.Providers.BinanceAPISecret, log)
	forex := providers.NewForexAdapter(cfg.Providers.ForexBaseURL, cfg.Providers.ForexAPIKey, log)
	exchange := providers.NewExchangeAdapter(cfg.Providers.ExchangeBaseURL, log)
	registry := providers.NewRegistry(classifier, equities, crypto, forex, exchange)

	var archiver *archive.Archiver
	if cfg.AWS.S3Bucket != "" {
		archiver, err = archive.New(context.Background(), cfg.AWS.S3Bucket, cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, "option_chain_data", log)
		if err != nil {
			log.WithError(err).Warn("failed to initialize snapshot archiver, continuing without it")
			archiver = nil
		}
	}
	pipeline := newPipeline(exchange, cfg.OutputDir, auditStore, archiver, log, m)

	authSvc := auth.NewService(auditDB)

	pollerTask := poller.New(quoteCache, subs, registry, cfg.Poller.Interval, log, m)
	if redisClient != nil {
		pollerTask.SetOnComplete(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			payload := time.Now().UTC().Format(time.RFC3339)
			if err := redisClient.Publish(ctx, "marketdata:poll:completed", payload).Err(); err != nil {
				log.WithError(err).Warn("failed to publish poll completion event")
			}
		})
	}

	taskManager := tasks.NewManager(log)
	taskManager.RegisterTask(pollerTask)
	taskManager.StartAll()

	httpRouter := api.SetupRouter(quoteCache, subs, registry, pipeline, authSvc, cfg, m, log)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: corsMiddleware.Handler(httpRouter),
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("shutdown signal received")
	taskManager.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http server did not shut down cleanly")
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func newPipeline(exchange *providers.ExchangeAdapter, outputDir string, auditStore *audit.Store, archiver *archive.Archiver, log *logging.Logger, m *metrics.Collectors) *options.Pipeline {
	if archiver == nil {
		return options.New(exchange, outputDir, auditStore, nil, log, m)
	}
	return options.New(exchange, outputDir, auditStore, archiver, log, m)
}
