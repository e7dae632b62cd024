package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zesch/rwse-checker/internal/api/handlers"
	mw "github.com/zesch/rwse-checker/internal/api/middleware"
	"github.com/zesch/rwse-checker/internal/config"
	"github.com/zesch/rwse-checker/internal/domain"
	"github.com/zesch/rwse-checker/internal/mlm"
	"github.com/zesch/rwse-checker/internal/registry"
	"github.com/zesch/rwse-checker/internal/service"
	"github.com/zesch/rwse-checker/internal/store"
)

// App holds the router and request metrics.
type App struct {
	Router *chi.Mux

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(reg *registry.Registry, provider domain.ScoreProvider, logger *zap.Logger) *App {
	// Services
	checkerSvc := service.NewCheckerService(reg, provider, logger)
	correctorSvc := service.NewCorrectorService(checkerSvc, logger)

	// Handlers
	checkHandler := handlers.NewCheckHandler(checkerSvc, correctorSvc)
	setsHandler := handlers.NewConfusionSetHandler(reg)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/check", checkHandler.Check)
		r.Post("/check-sentence", checkHandler.CheckSentence)
		r.Post("/correct", checkHandler.Correct)

		r.Route("/confusion-sets", func(r chi.Router) {
			r.Get("/stats", setsHandler.Stats)
			r.Get("/{word}", setsHandler.GetByWord)
		})
	})

	return app
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure providers and stores satisfy interfaces at compile time.
var (
	_ domain.ScoreProvider = (*mlm.HFClient)(nil)
	_ domain.ScoreProvider = (*mlm.ONNXProvider)(nil)
	_ domain.ScoreProvider = (*mlm.MockProvider)(nil)
	_ domain.ScoreProvider = (*mlm.CachedProvider)(nil)
	_ domain.GroupSource   = (*store.ConfusionSetStore)(nil)
)
