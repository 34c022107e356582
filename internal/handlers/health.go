// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swarai-git/digital-literacy-assistant/internal/db"
	"github.com/swarai-git/digital-literacy-assistant/internal/telemetry"
)

type HealthHandler struct {
	DB        *db.Database // nil when persistence is not configured
	Telemetry *telemetry.Registry
	StartTime time.Time
	Version   string
}

func NewHealthHandler(database *db.Database, registry *telemetry.Registry, version string) *HealthHandler {
	return &HealthHandler{
		DB:        database,
		Telemetry: registry,
		StartTime: time.Now(),
		Version:   version,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "not_configured"
	if h.DB != nil {
		dbStatus = "healthy"
		if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := gin.H{
		"status":  "ok",
		"version": h.Version,
		"uptime":  time.Since(h.StartTime).String(),
		"database": gin.H{
			"status": dbStatus,
		},
		"memory": gin.H{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"sys_mb":         memStats.Sys / 1024 / 1024,
			"num_goroutines": runtime.NumGoroutine(),
		},
	}

	if h.Telemetry != nil {
		providerStats := h.Telemetry.AllStats()

		providers := make([]gin.H, 0, len(providerStats))
		for _, ps := range providerStats {
			p := gin.H{
				"name":                 ps.Name,
				"state":                string(ps.State),
				"total_requests":       ps.TotalRequests,
				"success_count":        ps.SuccessCount,
				"failure_count":        ps.FailureCount,
				"consecutive_failures": ps.ConsecFailures,
				"avg_latency_ms":       ps.AvgLatencyMs,
				"p95_latency_ms":       ps.P95LatencyMs,
				"in_cooldown":          ps.InCooldown,
			}
			if ps.LastError != "" {
				p["last_error"] = ps.LastError
			}
			if ps.LastErrorTime != nil {
				p["last_error_time"] = ps.LastErrorTime.Format(time.RFC3339)
			}
			if ps.LastSuccessTime != nil {
				p["last_success_time"] = ps.LastSuccessTime.Format(time.RFC3339)
			}
			providers = append(providers, p)
		}
		response["providers"] = providers

		overallState := telemetry.Healthy
		for _, ps := range providerStats {
			if ps.State == telemetry.Unhealthy {
				overallState = telemetry.Unhealthy
				break
			}
			if ps.State == telemetry.Degraded {
				overallState = telemetry.Degraded
			}
		}
		response["overall_provider_health"] = string(overallState)
	}

	c.JSON(http.StatusOK, response)
}
