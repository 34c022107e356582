// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const TraceIDKey contextKey = "trace_id"

// RequestContext tags every request with a short trace id and logs a
// completion line with timing.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.New().String()[:8]
		start := time.Now()

		c.Set("trace_id", traceID)
		c.Set("request_start", start)

		ctx := context.WithValue(c.Request.Context(), TraceIDKey, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		duration := time.Since(start)
		slog.Info("Request completed",
			"trace_id", traceID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", fmt.Sprintf("%.1f", float64(duration.Microseconds())/1000.0),
		)
	}
}

// SecurityHeaders sets the hardening headers for a JSON-only API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		c.Header("Cross-Origin-Resource-Policy", "same-origin")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")

		c.Next()
	}
}

// Recovery turns a handler panic into a JSON 500 instead of killing
// the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				traceID, _ := c.Get("trace_id")
				slog.Error("Panic recovered",
					"trace_id", traceID,
					"error", fmt.Sprintf("%v", err),
					"path", c.Request.URL.Path,
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":    "An internal error occurred. Please try again.",
					"trace_id": traceID,
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
