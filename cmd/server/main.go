package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/config"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/internal/metrics"
	"github.com/mamadbah2/motofleet/internal/mqtt"
	"github.com/mamadbah2/motofleet/internal/repository/mongodb"
	"github.com/mamadbah2/motofleet/internal/repository/sheets"
	"github.com/mamadbah2/motofleet/internal/scheduler"
	"github.com/mamadbah2/motofleet/internal/server/handlers"
	"github.com/mamadbah2/motofleet/internal/server/middleware"
	"github.com/mamadbah2/motofleet/internal/server/router"
	commandsvc "github.com/mamadbah2/motofleet/internal/service/commands"
	fleetsvc "github.com/mamadbah2/motofleet/internal/service/fleet"
	notifysvc "github.com/mamadbah2/motofleet/internal/service/notify"
	reportingsvc "github.com/mamadbah2/motofleet/internal/service/reporting"
	"github.com/mamadbah2/motofleet/internal/service/rules"
	telemetrysvc "github.com/mamadbah2/motofleet/internal/service/telemetry"
	whatsappsvc "github.com/mamadbah2/motofleet/internal/service/whatsapp"
	"github.com/mamadbah2/motofleet/internal/version"
	"github.com/mamadbah2/motofleet/pkg/clients/expo"
	"github.com/mamadbah2/motofleet/pkg/clients/identity"
	whatsappclient "github.com/mamadbah2/motofleet/pkg/clients/whatsapp"
	"github.com/mamadbah2/motofleet/pkg/logger"
)

// offlinePublisher answers command publishes when no broker is configured.
type offlinePublisher struct{}

func (offlinePublisher) Publish(context.Context, string, []byte) error {
	return mqtt.ErrNotConnected
}

func main() {
	cfg, err := config.LoadServer("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		baseLogger.Fatal("failed to create mongodb indexes", zap.Error(err))
	}

	var exporter reportingsvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheetsRepo
	} else {
		baseLogger.Info("google sheets export disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	clock := clockwork.NewRealClock()
	tr := i18n.New(i18n.Resolve(""))

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	notifyOpts := notifysvc.Options{Translator: tr, Metrics: appMetrics}
	var whatsClient *whatsappclient.APIClient
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
		notifyOpts.WhatsApp = whatsClient
		notifyOpts.Recipient = cfg.WhatsApp.AlertRecipient
	} else {
		baseLogger.Warn("whatsapp disabled, alerts and operator commands unavailable")
	}
	if cfg.Push.Enabled() {
		notifyOpts.Push = expo.NewClient(cfg.Push.URL, 15*time.Second)
		notifyOpts.Devices = mongoRepo
	}
	notifier := notifysvc.NewService(notifyOpts, baseLogger.Named("svc.notify"))
	notifyCtx, stopNotify := context.WithCancel(context.Background())
	go notifier.Run(notifyCtx)

	engine := rules.NewEngine(cfg.Telemetry)
	telemetry := telemetrysvc.NewService(mongoRepo, engine, notifier, clock, appMetrics, baseLogger.Named("svc.telemetry"))

	var publisher commandsvc.Publisher = offlinePublisher{}
	var broker *mqtt.Client
	if cfg.MQTT.Enabled() {
		broker, err = mqtt.Connect(cfg.MQTT, baseLogger.Named("mqtt"))
		if err != nil {
			baseLogger.Fatal("failed to connect to mqtt broker", zap.Error(err))
		}
		if err := broker.Subscribe(ctx, cfg.MQTT.Topics, telemetry.HandleMessage); err != nil {
			baseLogger.Fatal("failed to subscribe telemetry topics", zap.Error(err))
		}
		publisher = broker
	} else {
		baseLogger.Warn("mqtt broker not configured, telemetry ingestion disabled")
	}

	reportingSvc := reportingsvc.NewService(mongoRepo, exporter, cfg.Telemetry.BatteryThreshold, location, tr, clock, baseLogger.Named("svc.reporting"))
	commandDispatcher := commandsvc.NewService(publisher, telemetry, reportingSvc, tr, baseLogger.Named("svc.commands"))
	fleet := fleetsvc.NewService(mongoRepo, baseLogger.Named("svc.fleet"))

	deps := router.Deps{
		Fleet:          handlers.NewFleetHandler(fleet, baseLogger.Named("handlers.fleet")),
		IoT:            handlers.NewIoTHandler(telemetry, commandDispatcher, mongoRepo, baseLogger.Named("handlers.iot")),
		CommandLimiter: middleware.NewRateLimiter(cfg.Server.CommandsPerMinute).Handler(),
		Metrics:        appMetrics,
		Gatherer:       registry,
	}
	if cfg.Auth.Required {
		identityClient := identity.NewClient(cfg.Identity, 10*time.Second)
		deps.Auth = middleware.NewAuth(identityClient, cfg.Auth.CacheTTL, clock, baseLogger.Named("auth")).Handler()
	}
	if whatsClient != nil {
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, whatsappsvc.NewSessionManager(clock), baseLogger.Named("svc.whatsapp"))
		deps.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	}
	engineHTTP := router.New(deps, baseLogger.Named("router"))

	var sender scheduler.Sender
	if notifyOpts.WhatsApp != nil && notifyOpts.Recipient != "" {
		sender = notifier
	}
	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, sender, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineHTTP,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("version", version.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	sched.Stop()
	if broker != nil {
		broker.Close()
	}

	stopNotify()
	select {
	case <-notifier.Done():
	case <-shutdownCtx.Done():
		baseLogger.Warn("alert worker did not stop in time")
	}
}
