// Package admin exposes cache administration and polishing over HTTP.
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/botirk38/embedcache/polish"
	"github.com/botirk38/embedcache/types"
)

// Cache is the part of *embedcache.Cache the admin routes need.
type Cache interface {
	Stats() types.Stats
	Clear() int
}

// Polisher serves POST /polish.
type Polisher interface {
	Polish(ctx context.Context, req polish.Request) (*polish.Response, error)
}

// Handler handles the admin REST endpoints
type Handler struct {
	cache    Cache
	polisher Polisher
	logger   logrus.FieldLogger
}

// NewHandler creates a new admin handler. polisher may be nil, in which case
// POST /polish is not registered.
func NewHandler(cache Cache, polisher Polisher, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{cache: cache, polisher: polisher, logger: logger}
}

// RegisterRoutes registers the admin routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/cache/stats", h.GetStats)
	r.DELETE("/cache", h.ClearCache)
	if h.polisher != nil {
		r.POST("/polish", h.Polish)
	}
}

// GetStats handles GET /cache/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats := h.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"stats":    stats,
		"hit_rate": stats.HitRate(),
	})
}

// ClearCache handles DELETE /cache
func (h *Handler) ClearCache(c *gin.Context) {
	n := h.cache.Clear()
	h.logger.WithField("cleared", n).Info("[ADMIN] cache cleared over HTTP")
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}

type polishRequest struct {
	Text      string `json:"text" binding:"required"`
	FieldType string `json:"field_type"`
}

// Polish handles POST /polish
func (h *Handler) Polish(c *gin.Context) {
	var req polishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	fieldType := types.FieldType(req.FieldType)
	if fieldType == "" {
		fieldType = types.FieldGeneric
	}

	resp, err := h.polisher.Polish(c.Request.Context(), polish.Request{Text: req.Text, FieldType: fieldType})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Error("[ADMIN] polish failed")
		}
		c.JSON(status, gin.H{"error": err.Error(), "retryable": types.IsRetryable(err)})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrProviderRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
