package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zombar/legalens/internal/api"
	"github.com/zombar/legalens/internal/database"
	"github.com/zombar/legalens/internal/fetcher"
	"github.com/zombar/legalens/internal/metrics"
	"github.com/zombar/legalens/internal/ollama"
	"github.com/zombar/legalens/internal/pipeline"
	"github.com/zombar/legalens/internal/queue"
	"github.com/zombar/legalens/internal/tracing"
	"github.com/zombar/legalens/pkg/logging"
)

func main() {
	// Optional .env for local development; ignore absence
	_ = godotenv.Load()

	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("legalens service initializing", "version", "1.0.0")

	// Initialize tracing
	tp, err := tracing.InitTracer("legalens")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Get default values from environment variables, with fallbacks
	portDefault := getEnv("PORT", "8080")
	dbURLDefault := getEnv("DATABASE_URL", "")
	redisAddrDefault := getEnv("REDIS_ADDR", "")
	ollamaURLDefault := getEnv("OLLAMA_URL", "http://localhost:11434")
	ollamaModelDefault := getEnv("OLLAMA_MODEL", ollama.DefaultModel)
	useOllamaDefault := getEnvBool("USE_OLLAMA", true)
	concurrencyDefault := 4

	var (
		port        = flag.String("port", portDefault, "Server port (env: PORT)")
		dbURL       = flag.String("database-url", dbURLDefault, "PostgreSQL connection string (env: DATABASE_URL)")
		redisAddr   = flag.String("redis-addr", redisAddrDefault, "Redis address for the storage queue (env: REDIS_ADDR)")
		ollamaURL   = flag.String("ollama-url", ollamaURLDefault, "Ollama API URL (env: OLLAMA_URL)")
		ollamaModel = flag.String("ollama-model", ollamaModelDefault, "Ollama model to use (env: OLLAMA_MODEL)")
		useOllama   = flag.Bool("use-ollama", useOllamaDefault, "Enable Ollama for summary generation (env: USE_OLLAMA)")
		concurrency = flag.Int("worker-concurrency", concurrencyDefault, "Storage worker concurrency")
	)
	flag.Parse()

	m := metrics.New("legalens")

	// Database is optional: without it the service still analyzes, it just
	// cannot persist or serve stored analyses.
	var db *database.DB
	if *dbURL != "" {
		db, err = database.New(*dbURL)
		if err != nil {
			logger.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database initialized")
	} else {
		logger.Warn("DATABASE_URL not set, persistence disabled")
	}

	// Summarizer and embedder
	var summarizer pipeline.Summarizer = pipeline.TemplateSummarizer{}
	var embedder queue.Embedder
	if *useOllama {
		ollamaClient, err := ollama.New(*ollamaURL, *ollamaModel)
		if err != nil {
			logger.Warn("failed to initialize Ollama client, falling back to template summaries",
				"error", err,
				"ollama_url", *ollamaURL,
			)
		} else {
			logger.Info("Ollama client initialized", "model", *ollamaModel, "url", *ollamaURL)
			summarizer = ollamaClient
			embedder = ollamaClient
		}
	} else {
		logger.Info("Ollama disabled, using template summaries")
	}

	// Storage queue: requires Redis, Postgres and an embedder.
	pipelineOpts := []pipeline.Option{
		pipeline.WithReporter(func(stage pipeline.Stage, status string) {
			logger.Debug("pipeline stage", "stage", stage, "status", status)
		}),
	}

	var worker *queue.Worker
	if *redisAddr != "" && db != nil && embedder != nil {
		queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
		defer queueClient.Close()

		worker = queue.NewWorker(queue.WorkerConfig{
			RedisAddr:   *redisAddr,
			Concurrency: *concurrency,
		}, db, embedder, m)

		go func() {
			if err := worker.Start(); err != nil {
				logger.Error("storage worker stopped", "error", err)
			}
		}()

		pipelineOpts = append(pipelineOpts, pipeline.WithStorer(queueClient))
		logger.Info("storage queue initialized", "redis_addr", *redisAddr)
	} else {
		logger.Warn("storage stage disabled",
			"redis_configured", *redisAddr != "",
			"database_configured", db != nil,
			"embedder_configured", embedder != nil,
		)
	}

	pl := pipeline.New(fetcher.New(), summarizer, pipelineOpts...)

	// Initialize API handler. A nil *database.DB must stay a nil interface.
	var store api.Store
	if db != nil {
		store = db
	}
	apiHandler := api.NewHandler(store, pl, m)

	// Wrap handler with middleware chain: HTTP logging -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware("legalens")(apiHandler),
	)

	// Create server with extended timeouts for AI processing
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("legalens service starting",
			"port", *port,
			"persistence_enabled", db != nil,
			"ollama_enabled", *useOllama,
			"ollama_url", *ollamaURL,
			"ollama_model", *ollamaModel,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if worker != nil {
		worker.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
