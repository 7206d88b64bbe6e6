package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the upstream circuit breaker state.
type BreakerReporter interface {
	BreakerState() string
}

type Handler struct {
	store   Pinger
	breaker BreakerReporter
	timeout time.Duration
}

func NewHandler(store Pinger, breaker BreakerReporter) *Handler {
	return &Handler{
		store:   store,
		breaker: breaker,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": "Session store unreachable",
		})
		return
	}

	breaker := "closed"
	if h.breaker != nil {
		breaker = h.breaker.BreakerState()
	}
	if breaker == "open" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"reason":  "Prediction service unavailable",
			"breaker": breaker,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP", "breaker": breaker})
}
