// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/swarai-git/digital-literacy-assistant/internal/scoring"
	"github.com/swarai-git/digital-literacy-assistant/internal/telemetry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the handlers without a database or external
// providers, the same degraded shape the service runs in locally.
func newTestRouter() *gin.Engine {
	agg := scoring.NewAggregator(nil, nil)
	analysis := NewAnalysisHandler(nil, agg, nil)
	health := NewHealthHandler(nil, telemetry.NewRegistry(), "test")
	stats := NewStatsHandler(nil)

	router := gin.New()
	router.POST("/analyze", analysis.AnalyzeMessage)
	router.POST("/analyze/url", analysis.AnalyzeURL)
	router.GET("/api/analysis/:id", analysis.GetAnalysis)
	router.GET("/api/history", analysis.History)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/stats", stats.Stats)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeMessage(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/analyze",
		`{"message": "Your account is suspended! Verify at http://192.168.1.100/bank/login"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Analysis struct {
			OverallScore int    `json:"overall_confidence_score"`
			Verdict      string `json:"verdict"`
			URLsFound    int    `json:"urls_found"`
		} `json:"analysis"`
		Duration float64 `json:"analysis_duration"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp.Analysis.URLsFound != 1 {
		t.Errorf("urls_found = %d, want 1", resp.Analysis.URLsFound)
	}
	if resp.Analysis.Verdict == "safe" {
		t.Error("IP-literal http link should not come back safe")
	}
	if resp.Analysis.OverallScore < 40 {
		t.Errorf("score = %d, want >= 40", resp.Analysis.OverallScore)
	}
}

func TestAnalyzeMessageValidation(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name string
		body string
	}{
		{"not json", "this is not json"},
		{"empty message", `{"message": ""}`},
		{"whitespace only", `{"message": "   "}`},
		{"too long", `{"message": "` + strings.Repeat("a", maxMessageLength+1) + `"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := postJSON(t, router, "/analyze", c.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestAnalyzeURL(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/analyze/url", `{"url": "https://www.paypa1.com/signin"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Analysis struct {
			Domain    string `json:"domain"`
			RiskScore int    `json:"risk_score"`
			IsSafe    bool   `json:"is_safe"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp.Analysis.Domain != "paypa1.com" {
		t.Errorf("domain = %q", resp.Analysis.Domain)
	}
	if resp.Analysis.IsSafe {
		t.Error("typosquat should not be safe")
	}
}

func TestAnalyzeURLValidation(t *testing.T) {
	router := newTestRouter()

	if w := postJSON(t, router, "/analyze/url", `{"url": ""}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty url: status = %d, want 400", w.Code)
	}
}

func TestHistoryWithoutDatabase(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analysis/1", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("get: status = %d, want 503", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("history: status = %d, want 503", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("stats: status = %d, want 503", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %v", resp["status"])
	}
	database, _ := resp["database"].(map[string]interface{})
	if database["status"] != "not_configured" {
		t.Errorf("database status = %v", database["status"])
	}
}
