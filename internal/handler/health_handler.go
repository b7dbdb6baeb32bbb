package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	ready func() bool
}

// NewHealthHandler creates a health handler; ready reports whether startup
// (seeding included) has finished
func NewHealthHandler(ready func() bool) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// Ping 基本健康检查
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness 就绪检查
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	if h.ready != nil && !h.ready() {
		c.JSON(503, utils.H{"status": "not_ready"})
		return
	}
	c.JSON(200, utils.H{"status": "ready"})
}

// Liveness 存活检查
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{"status": "alive"})
}
