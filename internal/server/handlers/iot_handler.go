package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

// TelemetryService reads the IoT collections and records manual alerts.
type TelemetryService interface {
	Sensors(ctx context.Context, limit int) ([]models.MotoStatus, error)
	LatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error)
	LatestEvents(ctx context.Context, limit int) ([]models.Event, error)
	AllStatus(ctx context.Context) ([]models.MotoStatus, error)
	Status(ctx context.Context, motoID string) (*models.MotoStatus, error)
	RecordManualAlert(ctx context.Context, motoID, message, source string) (*models.Event, error)
}

// CommandSender publishes moto commands.
type CommandSender interface {
	SendMotoCommand(ctx context.Context, motoID string, req models.CommandRequest, source string) (*models.CommandResult, error)
}

// DeviceRegistry stores push tokens.
type DeviceRegistry interface {
	UpsertDevice(ctx context.Context, device models.Device) error
}

// IoTHandler serves the /api telemetry endpoints.
type IoTHandler struct {
	telemetry TelemetryService
	commands  CommandSender
	devices   DeviceRegistry
	now       func() time.Time
	logger    *zap.Logger
}

// NewIoTHandler constructs the IoT handler.
func NewIoTHandler(telemetry TelemetryService, commands CommandSender, devices DeviceRegistry, logger *zap.Logger) *IoTHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IoTHandler{
		telemetry: telemetry,
		commands:  commands,
		devices:   devices,
		now:       time.Now,
		logger:    logger,
	}
}

// RegisterReads mounts the read-only routes on g.
func (h *IoTHandler) RegisterReads(g gin.IRoutes) {
	g.GET("/sensors", h.Sensors)
	g.GET("/telemetry/latest", h.LatestTelemetry)
	g.GET("/events/latest", h.LatestEvents)
	g.GET("/status/all", h.AllStatus)
	g.GET("/status/:id", h.Status)
}

// RegisterDevices mounts push token registration. g should carry the auth middleware.
func (h *IoTHandler) RegisterDevices(g gin.IRoutes) {
	g.POST("/devices", h.RegisterDevice)
}

// RegisterActions mounts the routes that act on motos.
func (h *IoTHandler) RegisterActions(g gin.IRoutes) {
	g.POST("/motos/:id/command", h.SendCommand)
	g.POST("/motos/:id/alert", h.SendAlert)
}

// Health handles GET /health.
func (h *IoTHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Sensors handles GET /api/sensors.
func (h *IoTHandler) Sensors(c *gin.Context) {
	limit, err := limitParam(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out, err := h.telemetry.Sensors(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// LatestTelemetry handles GET /api/telemetry/latest.
func (h *IoTHandler) LatestTelemetry(c *gin.Context) {
	limit, err := limitParam(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out, err := h.telemetry.LatestTelemetry(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// LatestEvents handles GET /api/events/latest.
func (h *IoTHandler) LatestEvents(c *gin.Context) {
	limit, err := limitParam(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out, err := h.telemetry.LatestEvents(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// AllStatus handles GET /api/status/all.
func (h *IoTHandler) AllStatus(c *gin.Context) {
	out, err := h.telemetry.AllStatus(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Status handles GET /api/status/:id.
func (h *IoTHandler) Status(c *gin.Context) {
	status, err := h.telemetry.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SendCommand handles POST /api/motos/:id/command.
func (h *IoTHandler) SendCommand(c *gin.Context) {
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, h.logger, err)
		return
	}

	res, err := h.commands.SendMotoCommand(c.Request.Context(), c.Param("id"), req, caller(c, "api"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SendAlert handles POST /api/motos/:id/alert.
func (h *IoTHandler) SendAlert(c *gin.Context) {
	var req models.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, h.logger, err)
		return
	}

	event, err := h.telemetry.RecordManualAlert(c.Request.Context(), c.Param("id"), req.Message, caller(c, "api"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertResult{OK: true, Event: *event})
}

// RegisterDevice handles POST /api/devices.
func (h *IoTHandler) RegisterDevice(c *gin.Context) {
	var device models.Device
	if err := c.ShouldBindJSON(&device); err != nil {
		badBody(c, h.logger, err)
		return
	}
	if email := c.GetString(UserEmailKey); email != "" {
		device.Email = email
	}
	device.RegisteredAt = h.now().UTC()

	if err := h.devices.UpsertDevice(c.Request.Context(), device); err != nil {
		writeError(c, h.logger, apperrors.InternalError("failed to register device", err))
		return
	}
	c.JSON(http.StatusCreated, device)
}
