package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
)

// FleetService is the inventory behaviour exposed over HTTP.
type FleetService interface {
	ListMotos(ctx context.Context, stockID string) ([]models.Moto, error)
	GetMoto(ctx context.Context, id string) (*models.Moto, error)
	CreateMoto(ctx context.Context, in models.MotoInput) (*models.Moto, error)
	UpdateMoto(ctx context.Context, id string, changes models.MotoChanges) (*models.Moto, error)
	DeleteMoto(ctx context.Context, id string) error
	ListStocks(ctx context.Context) ([]models.Stock, error)
	GetStock(ctx context.Context, id string) (*models.Stock, error)
	CreateStock(ctx context.Context, in models.StockInput) (*models.Stock, error)
	UpdateStock(ctx context.Context, id string, in models.StockInput) (*models.Stock, error)
	DeleteStock(ctx context.Context, id string) error
}

// FleetHandler serves /motos and /stocks.
type FleetHandler struct {
	svc    FleetService
	logger *zap.Logger
}

// NewFleetHandler constructs the inventory handler.
func NewFleetHandler(svc FleetService, logger *zap.Logger) *FleetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FleetHandler{svc: svc, logger: logger}
}

// Register mounts the inventory routes on g.
func (h *FleetHandler) Register(g gin.IRoutes) {
	g.GET("/motos", h.ListMotos)
	g.POST("/motos", h.CreateMoto)
	g.GET("/motos/:id", h.GetMoto)
	g.PUT("/motos/:id", h.UpdateMoto)
	g.DELETE("/motos/:id", h.DeleteMoto)

	g.GET("/stocks", h.ListStocks)
	g.POST("/stocks", h.CreateStock)
	g.GET("/stocks/:id", h.GetStock)
	g.PUT("/stocks/:id", h.UpdateStock)
	g.DELETE("/stocks/:id", h.DeleteStock)
}

// ListMotos handles GET /motos?stockId=.
func (h *FleetHandler) ListMotos(c *gin.Context) {
	motos, err := h.svc.ListMotos(c.Request.Context(), c.Query("stockId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, motos)
}

// GetMoto handles GET /motos/:id.
func (h *FleetHandler) GetMoto(c *gin.Context) {
	moto, err := h.svc.GetMoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, moto)
}

// CreateMoto handles POST /motos.
func (h *FleetHandler) CreateMoto(c *gin.Context) {
	var in models.MotoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}

	moto, err := h.svc.CreateMoto(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, moto)
}

// UpdateMoto handles PUT /motos/:id with a partial body.
func (h *FleetHandler) UpdateMoto(c *gin.Context) {
	var changes models.MotoChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		badBody(c, h.logger, err)
		return
	}

	moto, err := h.svc.UpdateMoto(c.Request.Context(), c.Param("id"), changes)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, moto)
}

// DeleteMoto handles DELETE /motos/:id.
func (h *FleetHandler) DeleteMoto(c *gin.Context) {
	if err := h.svc.DeleteMoto(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListStocks handles GET /stocks.
func (h *FleetHandler) ListStocks(c *gin.Context) {
	stocks, err := h.svc.ListStocks(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

// GetStock handles GET /stocks/:id.
func (h *FleetHandler) GetStock(c *gin.Context) {
	stock, err := h.svc.GetStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// CreateStock handles POST /stocks.
func (h *FleetHandler) CreateStock(c *gin.Context) {
	var in models.StockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}

	stock, err := h.svc.CreateStock(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}

// UpdateStock handles PUT /stocks/:id.
func (h *FleetHandler) UpdateStock(c *gin.Context) {
	var in models.StockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}

	stock, err := h.svc.UpdateStock(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// DeleteStock handles DELETE /stocks/:id.
func (h *FleetHandler) DeleteStock(c *gin.Context) {
	if err := h.svc.DeleteStock(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
