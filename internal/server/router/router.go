package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/metrics"
	"github.com/mamadbah2/motofleet/internal/server/handlers"
	"github.com/mamadbah2/motofleet/internal/server/middleware"
)

// Deps are the handlers and middlewares the router mounts. Nil Auth leaves the
// inventory and device registration open; nil Webhook disables the WhatsApp routes.
type Deps struct {
	Fleet          *handlers.FleetHandler
	IoT            *handlers.IoTHandler
	Webhook        *handlers.WebhookHandler
	Auth           gin.HandlerFunc
	CommandLimiter gin.HandlerFunc
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", deps.IoT.Health)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	protected := r.Group("/", optional(deps.Auth)...)
	deps.Fleet.Register(protected)

	api := r.Group("/api")
	deps.IoT.RegisterReads(api)
	deps.IoT.RegisterDevices(api.Group("", optional(deps.Auth)...))
	deps.IoT.RegisterActions(api.Group("", optional(deps.CommandLimiter)...))

	if deps.Webhook != nil {
		r.GET("/webhook", deps.Webhook.Verify)
		r.POST("/webhook", deps.Webhook.Receive)
		protected.POST("/send-message", deps.Webhook.SendMessage)
	}

	logger.Info("router initialized")
	return r
}

func optional(h gin.HandlerFunc) []gin.HandlerFunc {
	if h == nil {
		return nil
	}
	return []gin.HandlerFunc{h}
}
