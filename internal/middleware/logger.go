package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	"github.com/chazo1994/Creatory/pkg/logger"
)

// RequestIDKey 请求 ID of上下文键
const RequestIDKey = "X-Request-ID"

// Logger logs one line when a request starts and one when it completes,
// and puts a request-scoped logger into ctx for the handlers
func Logger(base *slog.Logger) app.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		// 跳过健康检查路径of日志记录
		skipLogging := strings.HasPrefix(path, "/health/") || path == "/ping"

		// 生成orget请求 ID
		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		reqLogger := logger.WithRequestID(base, requestID).With(
			"method", string(c.Method()),
			"path", path,
			"client_ip", c.ClientIP(),
		)
		ctx = logger.WithContext(ctx, reqLogger)

		if !skipLogging {
			reqLogger.Debug("request started")
		}

		c.Next(ctx)

		if skipLogging {
			return
		}

		latency := time.Since(start)
		statusCode := c.Response.StatusCode()
		done := reqLogger.With(
			"status", statusCode,
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
		)

		switch {
		case statusCode >= 500:
			done.Error("request completed with server error")
		case statusCode >= 400:
			done.Warn("request completed with client error")
		default:
			done.Info("request completed successfully")
		}
	}
}

// GetRequestID 从上下文中get请求 ID
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}
