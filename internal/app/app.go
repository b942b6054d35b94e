// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/coursewise/advisor-go/internal/advisor"
	"github.com/coursewise/advisor-go/internal/catalog"
	"github.com/coursewise/advisor-go/internal/config"
	"github.com/coursewise/advisor-go/internal/ctxutil"
	"github.com/coursewise/advisor-go/internal/genai"
	"github.com/coursewise/advisor-go/internal/logger"
	"github.com/coursewise/advisor-go/internal/metrics"
	"github.com/coursewise/advisor-go/internal/objstore"
	"github.com/coursewise/advisor-go/internal/rag"
	"github.com/coursewise/advisor-go/internal/ratelimit"
	"github.com/coursewise/advisor-go/internal/schedule"
	"github.com/coursewise/advisor-go/internal/session"
	"github.com/coursewise/advisor-go/internal/snapshot"
	"github.com/coursewise/advisor-go/internal/storage"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg             *config.Config
	logger          *logger.Logger
	logShutdown     func(context.Context) error
	db              *storage.DB
	catalog         *catalog.Catalog
	metrics         *metrics.Metrics
	registry        *prometheus.Registry
	engine          *advisor.Engine
	synthesizer     *schedule.Synthesizer
	ragIndex        *rag.Index
	narrator        genai.Narrator
	narratorLimiter *ratelimit.NarratorLimiter
	sessions        *session.Manager
	snapshots       *snapshot.Manager
	server          *http.Server
	wg              sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log, logShutdown := logger.NewWithShipping(cfg.LogLevel, cfg.BetterstackToken)

	log = log.WithField("service", "advisor-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger to enable context value extraction (sessionID,
	// studentID, requestID) via ContextHandler in slog.*Context() calls.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterstackToken != "" {
		log.Info("Better Stack log shipping enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	snapshots, err := newSnapshotManager(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(ctx, cfg, log, m, snapshots)
	if err != nil {
		return nil, err
	}

	cat, err := db.LoadCatalog(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	m.SetCatalogSize(len(cat.Courses), len(cat.Lecturers))
	log.WithFields(map[string]any{
		"courses":   len(cat.Courses),
		"lecturers": len(cat.Lecturers),
		"programs":  len(cat.Programs),
	}).Info("Catalog loaded")
	if cat.IsEmpty() {
		log.Warn("Catalog is empty; run cmd/seed to populate it")
	}

	ragIndex := rag.NewIndex(log)
	engine := advisor.New(cat, log, advisor.WithRelatedSearch(relatedSearch(ragIndex, cat)))
	synthesizer := schedule.NewSynthesizer(cat, nil)

	// BM25 index build and LLM narrator creation are independent
	var narrator genai.Narrator

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ragIndex.Build(cat.Courses); err != nil {
			log.WithError(err).Warn("BM25 index build failed")
		}
		return nil
	})
	g.Go(func() error {
		if !cfg.HasLLMProvider() {
			return nil
		}
		n, err := genai.CreateNarrator(gctx, buildLLMConfig(cfg), cfg.LLMCacheTTL, m)
		if err != nil {
			log.WithError(err).Warn("Narrator initialization failed")
			return nil
		}
		narrator = n
		return nil
	})
	_ = g.Wait()

	if narrator != nil {
		log.WithField("primary", string(narrator.Provider())).Info("LLM narration enabled")
	} else {
		log.Info("LLM narration disabled, using rule-based narratives")
	}

	narratorLimiter := ratelimit.NewNarratorLimiter(
		cfg.LLMRateBurst,
		cfg.LLMRefillPerHour,
		cfg.LLMDailyLimit,
		config.RateLimiterCleanupInterval,
		m,
	)

	sessions := session.NewManager(session.Config{
		TTL:             cfg.SessionTTL,
		HistoryLimit:    cfg.SessionHistory,
		CleanupInterval: config.SessionCleanupInterval,
	}, log, m)

	app := &Application{
		cfg:             cfg,
		logger:          log,
		logShutdown:     logShutdown,
		db:              db,
		catalog:         cat,
		metrics:         m,
		registry:        registry,
		engine:          engine,
		synthesizer:     synthesizer,
		ragIndex:        ragIndex,
		narrator:        narrator,
		narratorLimiter: narratorLimiter,
		sessions:        sessions,
		snapshots:       snapshots,
	}

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.buildRouter(),
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// relatedSearch adapts the BM25 index into the advisor's related-course
// hook. Returns nil results until the index is built.
func relatedSearch(idx *rag.Index, cat *catalog.Catalog) func(query string, n int) []catalog.Course {
	return func(query string, n int) []catalog.Course {
		if !idx.IsEnabled() {
			return nil
		}
		results, err := idx.Search(query, n)
		if err != nil {
			return nil
		}
		courses := make([]catalog.Course, 0, len(results))
		for _, r := range results {
			if c, ok := cat.CourseByID(r.CourseID); ok {
				courses = append(courses, c)
			}
		}
		return courses
	}
}

// newSnapshotManager wires the snapshot layer when enabled, nil otherwise.
func newSnapshotManager(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*snapshot.Manager, error) {
	if !cfg.SnapshotEnabled {
		return nil, nil
	}

	client, err := objstore.New(ctx, objstore.Config{
		Endpoint:    cfg.SnapshotEndpoint,
		AccessKeyID: cfg.SnapshotAccessKey,
		SecretKey:   cfg.SnapshotSecretKey,
		BucketName:  cfg.SnapshotBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	return snapshot.New(client, snapshot.Config{Key: cfg.SnapshotKey}, log, m), nil
}

// openDatabase opens the catalog database, restoring the latest snapshot
// first when the local file is missing and snapshots are enabled.
func openDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics, snapshots *snapshot.Manager) (*storage.DB, error) {
	dbPath := cfg.SQLitePath()

	if snapshots != nil {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			log.Info("Local catalog missing, restoring snapshot...")
			if _, _, err := snapshots.Restore(ctx, cfg.DataDir); err != nil {
				if errors.Is(err, snapshot.ErrNotFound) {
					log.Warn("No snapshot available, starting with an empty catalog")
				} else {
					log.WithError(err).Warn("Snapshot restore failed, starting with an empty catalog")
				}
			}
		}
	}

	db, err := storage.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	db.SetMetrics(m)
	log.WithField("path", dbPath).Info("Database connected")
	return db, nil
}

// buildLLMConfig creates an LLMConfig from the application config.
func buildLLMConfig(cfg *config.Config) genai.LLMConfig {
	llmCfg := genai.LLMConfig{
		Gemini:   genai.ProviderConfig{APIKey: cfg.GeminiAPIKey, Models: cfg.GeminiModels},
		Groq:     genai.ProviderConfig{APIKey: cfg.GroqAPIKey, Models: cfg.GroqModels},
		Cerebras: genai.ProviderConfig{APIKey: cfg.CerebrasAPIKey, Models: cfg.CerebrasModels},
	}

	for _, p := range cfg.LLMProviders {
		switch p {
		case "gemini":
			llmCfg.Providers = append(llmCfg.Providers, genai.ProviderGemini)
		case "groq":
			llmCfg.Providers = append(llmCfg.Providers, genai.ProviderGroq)
		case "cerebras":
			llmCfg.Providers = append(llmCfg.Providers, genai.ProviderCerebras)
		default:
			slog.Warn("ignoring unknown provider", "name", p)
		}
	}

	return llmCfg
}

// buildRouter assembles the gin router with middleware and routes.
func (a *Application) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(securityHeadersMiddleware())
	router.Use(a.loggingMiddleware())

	router.GET("/healthz", a.healthCheck)
	router.HEAD("/healthz", a.healthCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.POST("/sessions", a.createSession)
		api.GET("/sessions/:id", a.getSession)
		api.DELETE("/sessions/:id", a.deleteSession)

		api.POST("/intent", a.classifyIntent)
		api.POST("/recommend", a.recommend)
		api.POST("/schedule", a.generateSchedule)
		api.POST("/conflicts", a.checkConflicts)
		api.POST("/advise", a.advise)

		api.GET("/usage", a.usage)
	}

	return router
}

func (a *Application) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := a.db.Conn().PingContext(ctx); err != nil {
		a.logger.WithError(err).Warn("Health check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"catalog": gin.H{
			"courses":   len(a.catalog.Courses),
			"lecturers": len(a.catalog.Lecturers),
			"programs":  len(a.catalog.Programs),
		},
		"features": gin.H{
			"narrator":    a.narrator != nil && a.narrator.IsEnabled(),
			"bm25_search": a.ragIndex.IsEnabled(),
			"snapshots":   a.snapshots != nil,
		},
	})
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Graceful shutdown sequence:
//  1. Receive SIGINT/SIGTERM
//  2. Cancel context to stop background jobs, wait for them
//  3. Close resources in order (HTTP server, narrator, database, limiters)
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.updateCatalogMetrics(ctx)
	}()
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown performs graceful shutdown of the HTTP server and resources.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")

	if a.narrator != nil {
		if err := a.narrator.Close(); err != nil {
			a.logger.WithError(err).WithField("component", "narrator").Error("Component close error")
		}
	}

	a.sessions.Stop()
	a.narratorLimiter.Stop()

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if err := a.logShutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}

// updateCatalogMetrics periodically records catalog and index sizes.
func (a *Application) updateCatalogMetrics(ctx context.Context) {
	a.logger.Debug("Catalog metrics job started")
	defer a.logger.Debug("Catalog metrics job stopped")

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.metrics.SetCatalogSize(len(a.catalog.Courses), len(a.catalog.Lecturers))
		}
	}
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug.
func (a *Application) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-Id")
		}
		if requestID != "" {
			ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		entry := a.logger.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		if requestID != "" {
			entry = entry.WithRequestID(requestID)
		}

		switch {
		case status >= 500:
			a.metrics.RecordHTTPError("server_error", path)
			entry.Error("HTTP request failed")
		case status >= 400 && status != 404:
			a.metrics.RecordHTTPError("client_error", path)
			entry.Warn("HTTP request rejected")
		case status == 404:
			entry.Debug("HTTP request not found")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}
