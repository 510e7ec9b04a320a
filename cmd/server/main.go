package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/khushik17/notesweb/internal/config"
	"github.com/khushik17/notesweb/internal/database"
	"github.com/khushik17/notesweb/internal/handlers"
	"github.com/khushik17/notesweb/internal/logger"
	"github.com/khushik17/notesweb/internal/middleware"
	"github.com/khushik17/notesweb/internal/queue"
	"github.com/khushik17/notesweb/internal/services/oidc"
	"github.com/khushik17/notesweb/internal/telemetry"
	"github.com/khushik17/notesweb/web"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("oidc_provider", cfg.OIDCProvider),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider *sdktrace.TracerProvider
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "notesweb-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Connect to Redis for rate limiting
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ for the notification queue (required)
	// Retry with exponential backoff to handle broker startup delays
	jobQueue := connectQueue(cfg.RabbitMQURL, zapLogger)
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	// Initialize repositories
	noteRepo := database.NewNoteRepository(db)
	userRepo := database.NewUserRepository(db)
	oidcConfigRepo := database.NewOIDCConfigRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Resolve identity-provider settings; the server refuses to start without them
	oidcProvider := oidc.NewProvider(oidcConfigRepo, cfg.OIDCIssuer, cfg.OIDCJWKSUrl)
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 15*time.Second)
	oidcConfig, err := oidcProvider.GetConfig(startupCtx, cfg.OIDCProvider)
	if err != nil {
		startupCancel()
		zapLogger.Fatal("identity_provider_not_configured",
			zap.String("provider", cfg.OIDCProvider),
			zap.Error(err),
		)
	}
	jwksURL := oidcProvider.JWKSUrlFor(startupCtx, oidcConfig)
	startupCancel()

	jwksManager := oidc.NewJWKSManager()
	verifier := oidc.NewVerifier(jwksManager, oidcConfig.Issuer, jwksURL)
	zapLogger.Info("identity_provider_configured",
		zap.String("provider", cfg.OIDCProvider),
		zap.String("issuer", oidcConfig.Issuer),
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(oidcProvider, cfg.OIDCProvider, zapLogger)
	noteHandler := handlers.NewNoteHandler(noteRepo, jobQueue, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, redisLimiter, jobQueue)

	staticFS, err := web.Static()
	if err != nil {
		zapLogger.Fatal("failed_to_load_embedded_frontend", zap.Error(err))
	}

	// Setup router
	r := mux.NewRouter()

	// Middleware executes in registration order, outermost first
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("notesweb-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))

	// CORS from DB with hot reload, falling back to FRONTEND_URL
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())

	// Rate limiting is applied per route group, not globally
	rateLimitReloader := middleware.NewRateLimitReloader(redisLimiter.Client(), ratelimitConfigRepo, "5-S", zapLogger, 1*time.Minute)
	rateLimitMW := rateLimitReloader.Middleware()

	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	authMW := middleware.Auth(userRepo, verifier, cfg.IsProduction(), zapLogger)

	// Public routes
	r.HandleFunc("/", healthChecker.Root).Methods("GET")
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))
	openAPIHandler.RegisterRoutes(r)

	// Auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()

	loginRouter := authRouter.PathPrefix("/login").Subrouter()
	loginRouter.Use(rateLimitMW)
	loginRouter.HandleFunc("", authHandler.GetOIDCLogin).Methods("GET")

	meRouter := authRouter.PathPrefix("/me").Subrouter()
	meRouter.Use(authMW)
	meRouter.Use(rateLimitMW)
	meRouter.HandleFunc("", authHandler.GetMe).Methods("GET")

	// Note routes (protected)
	notesRouter := r.PathPrefix("/notes").Subrouter()
	notesRouter.Use(authMW)
	notesRouter.Use(rateLimitMW)
	noteHandler.RegisterRoutes(notesRouter)

	// Catch-all OPTIONS handler so CORS preflights succeed on every path
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Everything else is either a frontend asset or a JSON 404
	r.NotFoundHandler = handlers.NewSPAHandler(staticFS)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Config hot-reload loops and DLQ garbage collection
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	dlqGC := queue.NewGarbageCollector(jobQueue, 1*time.Hour, 24*time.Hour, zapLogger)
	go func() {
		if err := dlqGC.Start(reloadCtx); err != nil && err != context.Canceled {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()
	zapLogger.Info("started_dlq_garbage_collector",
		zap.Duration("interval", 1*time.Hour),
		zap.Duration("retention", 24*time.Hour),
	)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	// Let in-flight notification publishes finish before the queue closes
	noteHandler.Wait()

	zapLogger.Info("server_exited")
}

// connectQueue dials RabbitMQ, retrying with capped exponential backoff.
func connectQueue(amqpURL string, zapLogger *zap.Logger) *queue.RabbitMQQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}
