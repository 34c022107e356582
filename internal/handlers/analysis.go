// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swarai-git/digital-literacy-assistant/internal/db"
	"github.com/swarai-git/digital-literacy-assistant/internal/models"
	"github.com/swarai-git/digital-literacy-assistant/internal/scoring"
	"github.com/swarai-git/digital-literacy-assistant/internal/urlcheck"
	"github.com/swarai-git/digital-literacy-assistant/internal/urlinfo"
)

// maxMessageLength bounds submitted text. Scam messages are short;
// anything larger is likely a paste mistake or abuse.
const maxMessageLength = 10000

type AnalysisHandler struct {
	DB         *db.Database // nil when persistence is not configured
	Aggregator *scoring.Aggregator
	URLInfo    *urlinfo.Resolver // nil disables DNS/WHOIS enrichment
}

func NewAnalysisHandler(database *db.Database, agg *scoring.Aggregator, info *urlinfo.Resolver) *AnalysisHandler {
	return &AnalysisHandler{DB: database, Aggregator: agg, URLInfo: info}
}

type analyzeRequest struct {
	Message string `json:"message"`
}

// AnalyzeMessage runs the full pipeline on one submitted message and,
// when a database is configured, records the outcome.
func (h *AnalysisHandler) AnalyzeMessage(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON with a 'message' field"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be empty"})
		return
	}
	if len(message) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message too long"})
		return
	}

	start := time.Now()
	assessment := h.Aggregator.AnalyzeMessage(c.Request.Context(), message)
	duration := time.Since(start).Seconds()

	response := gin.H{
		"analysis":          assessment,
		"analysis_duration": duration,
	}

	if h.DB != nil {
		if id, err := h.saveAssessment(c, message, assessment, duration); err != nil {
			traceID, _ := c.Get("trace_id")
			slog.Error("Failed to persist analysis", "trace_id", traceID, "error", err)
		} else {
			response["id"] = id
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *AnalysisHandler) saveAssessment(c *gin.Context, message string, a scoring.Assessment, duration float64) (int, error) {
	full, err := json.Marshal(a)
	if err != nil {
		return 0, err
	}

	row := &models.MessageAnalysis{
		MessageExcerpt:   models.Excerpt(message),
		OverallScore:     a.OverallScore,
		Verdict:          a.Verdict,
		URLsFound:        a.URLsFound,
		FullResults:      full,
		AnalysisSuccess:  true,
		AnalysisDuration: &duration,
	}
	if a.MLAvailable {
		pred := a.MLPrediction
		conf := a.MLConfidence
		row.MLPrediction = &pred
		row.MLConfidence = &conf
	}

	return h.DB.SaveAnalysis(c.Request.Context(), row)
}

type analyzeURLRequest struct {
	URL string `json:"url"`
}

// AnalyzeURL scores one URL structurally and, when enabled, enriches
// it with DNS resolution and registrar data.
func (h *AnalysisHandler) AnalyzeURL(c *gin.Context) {
	var req analyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON with a 'url' field"})
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL must not be empty"})
		return
	}

	analysis := urlcheck.Analyze(rawURL)
	response := gin.H{"analysis": analysis}

	if h.URLInfo != nil && analysis.Err == "" {
		info := h.URLInfo.Lookup(c.Request.Context(), rawURL)
		response["network"] = info
		if info.DNSResolved && analysis.Domain != "" {
			if registrar, err := h.URLInfo.Registrar(c.Request.Context(), analysis.Domain); err == nil {
				response["registrar"] = registrar
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetAnalysis returns one stored analysis by id.
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History is not available without a database"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis id"})
		return
	}

	row, err := h.DB.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, row.ToDict())
}

// History lists recent analyses, newest first.
func (h *AnalysisHandler) History(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History is not available without a database"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rows, err := h.DB.RecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	items := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ToDict())
	}
	c.JSON(http.StatusOK, gin.H{"analyses": items})
}
