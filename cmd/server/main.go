package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/review-memory/api/openapi"
	"github.com/benvon/review-memory/internal/config"
	"github.com/benvon/review-memory/internal/events"
	"github.com/benvon/review-memory/internal/handlers"
	"github.com/benvon/review-memory/internal/ledger"
	"github.com/benvon/review-memory/internal/logger"
	"github.com/benvon/review-memory/internal/middleware"
	"github.com/benvon/review-memory/internal/review"
	"github.com/benvon/review-memory/internal/services/ai"
	"github.com/benvon/review-memory/internal/storage"
	"github.com/benvon/review-memory/internal/telemetry"
)

const serviceName = "review-memory"

// set with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including provider request previews")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{
		DebugMode: debugMode,
		Format:    cfg.LogFormat,
		Service:   serviceName,
		Version:   version,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("events_enabled", cfg.RabbitMQURL != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Endpoint:       cfg.OTELEndpoint,
			Insecure:       true,
		})
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.New(startCtx, storage.Options{
		Backend:     cfg.StorageBackend,
		RedisURL:    cfg.RedisURL,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	startCancel()
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage", zap.Error(err))
		}
	}()
	zapLogger.Info("storage_opened", zap.String("backend", cfg.StorageBackend))

	publisher := connectPublisher(cfg.RabbitMQURL, zapLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLogger.Warn("failed_to_close_event_publisher", zap.Error(err))
		}
	}()

	router := ledger.NewRouter(store, ledger.WithLogger(zapLogger))

	svc := review.NewService(router, createCompleter(cfg, zapLogger, debugMode),
		review.WithPublisher(publisher),
		review.WithLogger(zapLogger),
		review.WithCompletionTimeout(cfg.CompletionTimeout),
	)

	checks := map[string]handlers.CheckFunc{"storage": store.Ping}
	if rp, ok := publisher.(*events.RabbitMQPublisher); ok {
		checks["events"] = func(context.Context) error {
			if !rp.Healthy() {
				return events.ErrPublisherClosed
			}
			return nil
		}
	}
	healthChecker := handlers.NewHealthChecker(checks, func() int { return len(router.Keys()) })

	openAPIHandler, err := handlers.NewOpenAPIHandler(openapi.Document)
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_document", zap.Error(err))
	}

	r := mux.NewRouter()
	r.NotFoundHandler = middleware.NotFound()
	r.MethodNotAllowedHandler = middleware.MethodNotAllowed()

	// first registered runs outermost
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.MaxRequestSize(cfg.MaxRequestBytes))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))

	r.HandleFunc("/health", healthChecker.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.VersionHandler(version, commit, buildDate)).Methods(http.MethodGet)
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api").Subrouter()
	if cfg.RateLimitEnabled {
		rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, rateLimitClient(store, cfg, zapLogger), zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
		apiRouter.Use(rateLimitMW)
	}
	handlers.NewReviewHandler(svc, zapLogger).RegisterRoutes(apiRouter)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           middleware.CORS(cfg.CORSAllowedOrigins, zapLogger)(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// createCompleter builds the configured completion provider. Without credentials the
// service still serves history and stats, and review calls answer 503.
func createCompleter(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) ai.Completer {
	if cfg.OpenAIKey == "" {
		zapLogger.Warn("ai_provider_not_configured_reviews_disabled")
		return ai.Unconfigured
	}

	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry, zapLogger, debugMode)

	completer, err := registry.GetProvider(cfg.AIProvider, map[string]string{
		"api_key":     cfg.OpenAIKey,
		"model":       cfg.AIModel,
		"base_url":    cfg.AIBaseURL,
		"timeout":     cfg.CompletionTimeout.String(),
		"max_retries": strconv.Itoa(cfg.AIMaxRetries),
	})
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_reviews_disabled",
			zap.String("provider", cfg.AIProvider),
			zap.Strings("available", registry.Names()),
			zap.Error(err))
		return ai.Unconfigured
	}
	if p, ok := completer.(*ai.OpenAIProvider); ok {
		zapLogger.Info("ai_provider_ready", zap.String("provider", cfg.AIProvider), zap.String("model", p.Model()))
	}
	return completer
}

// connectPublisher dials RabbitMQ with capped exponential backoff. Events are best effort,
// so an unreachable broker degrades to the no-op publisher instead of stopping startup.
func connectPublisher(amqpURL string, zapLogger *zap.Logger) events.Publisher {
	if amqpURL == "" {
		return events.NoopPublisher{}
	}

	const (
		maxAttempts  = 5
		initialDelay = 1 * time.Second
		maxDelay     = 15 * time.Second
	)
	delay := initialDelay
	for attempt := 1; ; attempt++ {
		p, err := events.NewRabbitMQPublisher(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return p
		}
		if attempt == maxAttempts {
			zapLogger.Warn("rabbitmq_unavailable_events_disabled",
				zap.Int("attempts", attempt),
				zap.Error(err))
			return events.NoopPublisher{}
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_delay", delay),
			zap.Error(err))
		time.Sleep(delay)
		delay = min(delay*2, maxDelay)
	}
}

// rateLimitClient shares the storage Redis connection when there is one, opens REDIS_URL
// when set for another backend, and otherwise returns nil for in-memory counters
func rateLimitClient(store storage.Store, cfg *config.Config, zapLogger *zap.Logger) *redis.Client {
	if rs, ok := store.(*storage.RedisStore); ok {
		return rs.Client()
	}
	if cfg.RedisURL == "" {
		zapLogger.Info("rate_limit_counters_in_memory")
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Warn("invalid_redis_url_rate_limit_counters_in_memory", zap.Error(err))
		return nil
	}
	return redis.NewClient(opts)
}
