package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

// UserEmailKey is the gin context key the auth middleware stores the caller under.
const UserEmailKey = "user_email"

const (
	defaultLimit = 100
	maxLimit     = 1000
)

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	structured := apperrors.AsStructuredError(err)
	status := structured.HTTPStatus()
	if status >= 500 {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, structured.ToResponse())
}

func badBody(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("invalid request body", zap.Error(err))
	writeError(c, logger, apperrors.ValidationError("invalid request body"))
}

// limitParam reads ?limit=, defaulting to 100.
func limitParam(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, apperrors.ValidationError("limit must be between 1 and 1000")
	}
	return n, nil
}

func caller(c *gin.Context, fallback string) string {
	if email := c.GetString(UserEmailKey); email != "" {
		return fallback + ":" + email
	}
	return fallback
}
