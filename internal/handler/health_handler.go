package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/pkg/logger"
)

// Pinger - зависимость, доступность которой проверяет health
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc позволяет передать функцию как Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler отвечает на GET /api/health
type HealthHandler struct {
	checks map[string]Pinger
	log    *logger.Logger
}

// NewHealthHandler создает обработчик; nil-проверки пропускаются
func NewHealthHandler(checks map[string]Pinger, log *logger.Logger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{checks: active, log: log.Named("HealthHandler")}
}

// Health проверяет зависимости. База обязательна; недоступный кеш дает degraded.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("Health check не пройден", "component", name, "error", err)
			components[name] = "down"
			if name == "database" {
				status, code = "down", http.StatusServiceUnavailable
			} else if status == "ok" {
				status = "degraded"
			}
			continue
		}
		components[name] = "ok"
	}

	c.JSON(code, gin.H{"status": status, "components": components, "time": time.Now().UTC()})
}
