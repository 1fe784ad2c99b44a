package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"cognisense-backend/internal/classifier"
	"cognisense-backend/internal/config"
	"cognisense-backend/internal/database"
	"cognisense-backend/internal/handlers"
	"cognisense-backend/internal/logger"
	"cognisense-backend/internal/middleware"
	"cognisense-backend/internal/repository"
	"cognisense-backend/internal/repository/sqlite"
	"cognisense-backend/internal/router"
	"cognisense-backend/internal/scraper"
	"cognisense-backend/internal/services"
	"cognisense-backend/internal/store"
	"cognisense-backend/internal/websocket"
)

// durable bundles the optional persistence collaborators. All fields are
// nil when no store is configured.
type durable struct {
	rules     handlers.RuleRepository
	ruleSrc   services.RuleSource
	persister services.RecordPersister
	analyses  handlers.AnalysisReader
	close     func()
}

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting CogniSense backend", "env", cfg.Env)

	// ──── Step 2: Durable Store ────
	db, err := openDurable(cfg, log)
	if err != nil {
		log.Fatal("Durable store initialization failed", "driver", cfg.DatabaseDriver, "error", err)
	}
	defer db.close()

	// ──── Step 3: Redis (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		redisClients, err = database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, continuing without cache and pub/sub", "error", err)
		} else {
			defer redisClients.Close()
			log.Info("Redis connected")
		}
	}

	// ──── Step 4: Classifier ────
	taxonomy := classifier.DefaultTaxonomy()
	if cfg.TaxonomyPath != "" {
		taxonomy, err = classifier.LoadTaxonomy(cfg.TaxonomyPath)
		if err != nil {
			log.Fatal("Failed to load taxonomy", "path", cfg.TaxonomyPath, "error", err)
		}
	}
	loaders, closeModels := classifier.ProviderLoaders(classifier.ProviderConfig{
		Provider:     cfg.ClassifierProvider,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
	})
	defer closeModels()
	clf := classifier.NewAdapter(loaders, taxonomy, cfg.ClassifierMaxWords, log.With("component", "classifier"))
	log.Info("Classifier configured", "provider", cfg.ClassifierProvider, "labels", len(taxonomy.Labels))

	// ──── Step 5: Scraper ────
	var fetcher scraper.Fetcher = scraper.New(time.Duration(cfg.ScrapeTimeoutSeconds) * time.Second)
	if redisClients != nil {
		fetcher = scraper.NewCachedFetcher(fetcher, redisClients.Cache,
			time.Duration(cfg.ScrapeCacheTTLMinutes)*time.Minute, log.With("component", "scraper"))
	}

	// ──── Step 6: WebSocket Hub ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	var pubsub *redis.Client
	if redisClients != nil {
		pubsub = redisClients.PubSub
	}
	wsHub := websocket.NewHub(pubsub, jwtAuth, log.With("component", "websocket"))
	defer wsHub.Close()

	// ──── Step 7: Services ────
	activity := store.NewActivityStore()
	analyzer := services.NewAnalyzer(clf, cfg.BatchConcurrency, log.With("component", "analyzer"))
	ingest := services.NewIngestService(services.IngestDeps{
		Store:     activity,
		Resolver:  services.NewCategoryResolver(db.ruleSrc, cfg.RuleMatchLoose, log.With("component", "rules")),
		Analyzer:  analyzer,
		Clf:       clf,
		Fetcher:   fetcher,
		Persister: db.persister,
		Publisher: wsHub,
		Log:       log.With("component", "ingest"),
	})
	aggregator := services.NewAggregator(activity)

	// ──── Step 8: Start HTTP Server ────
	rulesLimiter := middleware.NewRateLimiter(60, time.Minute)
	defer rulesLimiter.Stop()

	r := router.New(
		jwtAuth,
		handlers.NewTrackingHandler(ingest),
		handlers.NewDashboardHandler(aggregator),
		handlers.NewContentHandler(analyzer, db.analyses),
		handlers.NewRuleHandler(db.rules),
		rulesLimiter,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
		}
	}()

	log.Info("CogniSense backend ready",
		"api", fmt.Sprintf("http://localhost:%s/api/v1", cfg.Port),
		"ws", fmt.Sprintf("ws://localhost:%s/api/v1/ws", cfg.Port),
		"persistence", cfg.PersistenceEnabled(),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Server error", "error", err)
	}
}

// openDurable connects the configured durable store and applies its
// migrations.
func openDurable(cfg *config.Config, log *logger.Logger) (*durable, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(pool, "migrations", log); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("PostgreSQL connected")

		rules := repository.NewRuleRepo(pool)
		analyses := repository.NewAnalysisRepo(pool)
		return &durable{
			rules:     rules,
			ruleSrc:   rules,
			persister: services.NewPersister(repository.NewSessionRepo(pool), analyses),
			analyses:  analyses,
			close:     pool.Close,
		}, nil

	case "sqlite":
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.NewMigrationRunner(db).Run(); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("SQLite opened", "path", cfg.SQLitePath)

		st := sqlite.New(db)
		return &durable{
			rules:     st,
			ruleSrc:   st,
			persister: services.NewPersister(st, st),
			analyses:  st,
			close:     func() { db.Close() },
		}, nil

	case "none", "":
		log.Warn("No durable store configured; rules and persistence are disabled")
		return &durable{close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
}
