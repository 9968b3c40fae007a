package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/vigil/internal/api/handlers"
	"github.com/pratik-mahalle/vigil/internal/api/middleware"
	"github.com/pratik-mahalle/vigil/internal/api/websocket"
	"github.com/pratik-mahalle/vigil/internal/config"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Status   *handlers.StatusHandler
	Timeline *handlers.TimelineHandler
	Alert    *handlers.AlertHandler
	Settings *handlers.SettingsHandler
}

func New(cfg *config.Config, log *logger.Logger, hub *websocket.Hub, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.DashboardURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Health and metrics
	r.Get("/health", h.Health.Health)
	r.Get("/healthz", h.Health.Health)
	r.Handle("/metrics", metrics.Handler())

	// Dashboard event stream
	r.Get("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(hub, w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status.Status)

		r.Route("/timeline", func(r chi.Router) {
			r.Get("/", h.Timeline.List)
			r.Get("/{id}", h.Timeline.Get)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.Alert.List)
			r.Get("/{id}", h.Alert.Get)
			r.Post("/{id}/acknowledge", h.Alert.Acknowledge)
			r.Post("/{id}/snooze", h.Alert.Snooze)
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/folders", h.Settings.GetFolders)
			r.Put("/folders", h.Settings.PutFolders)
			r.Get("/away-windows", h.Settings.GetAwayWindows)
			r.Put("/away-windows", h.Settings.PutAwayWindows)
			r.Get("/alerts", h.Settings.GetAlertConfig)
			r.Put("/alerts", h.Settings.PutAlertConfig)
		})
	})

	return r
}
