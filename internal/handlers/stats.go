// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarai-git/digital-literacy-assistant/internal/db"
)

type StatsHandler struct {
	DB *db.Database
}

func NewStatsHandler(database *db.Database) *StatsHandler {
	return &StatsHandler{DB: database}
}

// Stats reports today's verdict counts and average score.
func (h *StatsHandler) Stats(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stats are not available without a database"})
		return
	}

	stats, err := h.DB.DailyStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":             stats.Date.Format("2006-01-02"),
		"total_analyses":   stats.TotalAnalyses,
		"scam_count":       stats.ScamCount,
		"suspicious_count": stats.SuspiciousCount,
		"safe_count":       stats.SafeCount,
		"avg_score":        stats.AvgScore,
	})
}
