package agent

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pratik-mahalle/vigil/internal/api/handlers"
	"github.com/pratik-mahalle/vigil/internal/api/router"
	"github.com/pratik-mahalle/vigil/internal/api/websocket"
	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/config"
	"github.com/pratik-mahalle/vigil/internal/db"
	"github.com/pratik-mahalle/vigil/internal/dispatch"
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/engine"
	"github.com/pratik-mahalle/vigil/internal/monitor"
	"github.com/pratik-mahalle/vigil/internal/notify"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
	"github.com/pratik-mahalle/vigil/internal/pkg/validator"
	"github.com/pratik-mahalle/vigil/internal/repository/sqlite"
	"github.com/pratik-mahalle/vigil/internal/worker"
)

// Hooks carry the platform-specific integration points. Every field is
// optional; a nil hook degrades that feature rather than failing startup.
type Hooks struct {
	// Idle returns seconds since the last user input
	Idle monitor.IdleFunc

	// Sessions yields login and remote-session events
	Sessions monitor.SessionSource

	// Toast shows a desktop notification
	Toast notify.Poster

	// Email delivers batched alert emails; defaults to SMTP
	Email notify.Sender
}

// Agent owns the full pipeline: monitors feeding the event bus, the rule
// engine feeding the alert bus, and the dispatcher fanning out to
// notifiers, plus the local HTTP control interface.
type Agent struct {
	cfg    *config.Config
	logger *logger.Logger

	db       *db.DB
	store    *settings.Store
	eventBus *bus.Bus[*event.Event]
	alertBus *bus.Bus[*alert.Alert]

	engine     *engine.Engine
	dispatcher *dispatch.Dispatcher
	email      *notify.EmailNotifier
	hub        *websocket.Hub

	folderMon  *monitor.FolderMonitor
	inputMon   *monitor.InputMonitor
	sessionMon *monitor.SessionMonitor

	summary *worker.DailySummary
	server  *http.Server

	startedAt time.Time
}

// New builds the agent from configuration. Nothing runs until Run is
// called.
func New(ctx context.Context, cfg *config.Config, hooks Hooks, log *logger.Logger) (*Agent, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open timeline store: %w", err)
	}

	eventRepo := sqlite.NewEventRepository(database)
	alertRepo := sqlite.NewAlertRepository(database)
	settingsRepo := sqlite.NewSettingsRepository(database)

	store, err := settings.NewStore(ctx, settingsRepo, log)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("load settings: %w", err)
	}

	eventBus := bus.New[*event.Event]()
	eventBus.OnDrop(func(n int) { metrics.RecordEventsDropped("events", n) })
	alertBus := bus.New[*alert.Alert]()
	alertBus.OnDrop(func(n int) { metrics.RecordEventsDropped("alerts", n) })

	eng := engine.New(eventRepo, alertRepo, store, alertBus, engine.Options{
		SustainThreshold: cfg.Engine.SustainThreshold,
		QuietGap:         cfg.Engine.QuietGap,
		Location:         cfg.Location(),
	}, log)

	hub := websocket.NewHub(log)

	if hooks.Email == nil {
		hooks.Email = &notify.SMTPSender{}
	}
	alertCfg := store.Snapshot().Alerts
	email := notify.NewEmailNotifier(alertCfg.Email, hooks.Email, log)

	dispatcher := dispatch.New(log)
	dispatcher.AddRoute(alert.SeverityInfo, notify.NewLogNotifier(log))
	dispatcher.AddRoute(alert.Severity(alertCfg.DashboardMinSeverity), notify.NewDashboardNotifier(hub))
	dispatcher.AddRoute(alert.Severity(alertCfg.ToastMinSeverity), notify.NewToastNotifier(hooks.Toast, log))
	dispatcher.AddRoute(alert.Severity(alertCfg.Email.MinSeverity), email)

	a := &Agent{
		cfg:        cfg,
		logger:     log,
		db:         database,
		store:      store,
		eventBus:   eventBus,
		alertBus:   alertBus,
		engine:     eng,
		dispatcher: dispatcher,
		email:      email,
		hub:        hub,
		startedAt:  time.Now(),
	}

	if cfg.Monitors.FolderEnabled {
		a.folderMon = monitor.NewFolderMonitor(eventBus, log)
	}
	if cfg.Monitors.InputEnabled {
		a.inputMon = monitor.NewInputMonitor(eventBus, cfg.Monitors.InputPollInterval, hooks.Idle, log)
	}
	if cfg.Monitors.SessionEnabled && hooks.Sessions != nil {
		a.sessionMon = monitor.NewSessionMonitor(eventBus, hooks.Sessions, log)
	}

	// Configuration changes take effect without restart
	store.OnChange(func(snap settings.Snapshot) {
		if a.folderMon != nil {
			a.folderMon.SetFolders(snap.Folders)
		}
		email.SetConfig(snap.Alerts.Email)
		dispatcher.SetThreshold(email.Name(), alert.Severity(snap.Alerts.Email.MinSeverity))
		dispatcher.SetThreshold("dashboard", alert.Severity(snap.Alerts.DashboardMinSeverity))
		dispatcher.SetThreshold("toast", alert.Severity(snap.Alerts.ToastMinSeverity))
	})

	if cfg.Summary.Enabled {
		a.summary = worker.NewDailySummary(alertRepo, store, hooks.Email, cfg.Summary.Schedule, cfg.Location(), log)
	}

	v := validator.New()
	h := &router.Handlers{
		Health:   handlers.NewHealthHandler(database),
		Status:   handlers.NewStatusHandler(a.startedAt, eng, hub, email, store, cfg.Location()),
		Timeline: handlers.NewTimelineHandler(eventRepo, log),
		Alert:    handlers.NewAlertHandler(alertRepo, v, log),
		Settings: handlers.NewSettingsHandler(store, v, log),
	}
	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, hub, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// Run starts every component and blocks until ctx is canceled, then
// shuts the pipeline down in dependency order so queued work drains
// before each consumer stops.
func (a *Agent) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	// Consumers run against a background context; they stop when their
	// bus closes, after draining what producers already published.
	var pipeline sync.WaitGroup

	engineSub := a.eventBus.SubscribeBuffered(1024)
	pipeline.Add(1)
	go func() {
		defer pipeline.Done()
		a.engine.Run(context.Background(), engineSub)
	}()

	// Second event subscription feeds the live dashboard stream
	streamSub := a.eventBus.Subscribe()
	pipeline.Add(1)
	go func() {
		defer pipeline.Done()
		for ev := range streamSub.C() {
			a.hub.Broadcast("event", ev)
		}
	}()

	dispatchSub := a.alertBus.Subscribe()
	var dispatchWG sync.WaitGroup
	dispatchWG.Add(1)
	go func() {
		defer dispatchWG.Done()
		a.dispatcher.Run(context.Background(), dispatchSub)
	}()

	monCtx, stopMonitors := context.WithCancel(ctx)
	defer stopMonitors()
	var monitors sync.WaitGroup
	a.startMonitors(monCtx, &monitors)

	if a.summary != nil {
		if err := a.summary.Start(ctx); err != nil {
			a.logger.ErrorWithErr(err, "Daily summary disabled")
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.WithFields(map[string]interface{}{
			"addr": a.server.Addr,
		}).Info("Control interface listening")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		a.logger.ErrorWithErr(err, "Control interface failed")
	}

	a.logger.Info("Shutting down")

	// Producers first, then drain each stage in order
	stopMonitors()
	monitors.Wait()

	a.eventBus.Close()
	pipeline.Wait()

	a.alertBus.Close()
	dispatchWG.Wait()

	a.email.Flush()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.ErrorWithErr(err, "Control interface shutdown failed")
	}

	stopHub()
	if err := a.db.Close(); err != nil {
		a.logger.ErrorWithErr(err, "Timeline store close failed")
	}
	a.logger.Info("Shutdown complete")
	return nil
}

func (a *Agent) startMonitors(ctx context.Context, wg *sync.WaitGroup) {
	if a.folderMon != nil {
		folders := a.store.Snapshot().Folders
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.folderMon.Start(ctx, folders); err != nil {
				a.logger.ErrorWithErr(err, "Folder monitor failed")
			}
		}()
	}
	if a.inputMon != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.inputMon.Start(ctx)
		}()
	}
	if a.sessionMon != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.sessionMon.Start(ctx)
		}()
	}
}
