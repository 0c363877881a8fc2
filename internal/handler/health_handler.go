package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	storage Pinger
	vendors []string
}

func NewHealthHandler(storage Pinger, vendors []string) *HealthHandler {
	return &HealthHandler{storage: storage, vendors: vendors}
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	if err := h.storage.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:  "unhealthy",
			Storage: "disconnected",
			Vendors: h.vendors,
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Storage: "connected",
		Vendors: h.vendors,
	})
}
