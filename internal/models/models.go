// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package models

import (
	"encoding/json"
	"time"
)

// MessageAnalysis is one stored assessment of a user-submitted
// message: the classifier verdict, the aggregate score, and the full
// per-URL breakdown as JSON.
type MessageAnalysis struct {
	ID               int             `json:"id" db:"id"`
	MessageExcerpt   string          `json:"message_excerpt" db:"message_excerpt"`
	MLPrediction     *string         `json:"ml_prediction" db:"ml_prediction"`
	MLConfidence     *float64        `json:"ml_confidence" db:"ml_confidence"`
	OverallScore     int             `json:"overall_score" db:"overall_score"`
	Verdict          string          `json:"verdict" db:"verdict"`
	URLsFound        int             `json:"urls_found" db:"urls_found"`
	FullResults      json.RawMessage `json:"full_results" db:"full_results"`
	AnalysisSuccess  bool            `json:"analysis_success" db:"analysis_success"`
	ErrorMessage     *string         `json:"error_message" db:"error_message"`
	AnalysisDuration *float64        `json:"analysis_duration" db:"analysis_duration"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// ExcerptLimit caps how much of the submitted text is stored. Full
// messages can hold personal data; the excerpt is only for history
// listings.
const ExcerptLimit = 160

func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= ExcerptLimit {
		return text
	}
	return string(runes[:ExcerptLimit]) + "…"
}

type DailyStats struct {
	Date            time.Time `json:"date" db:"date"`
	TotalAnalyses   int       `json:"total_analyses" db:"total_analyses"`
	ScamCount       int       `json:"scam_count" db:"scam_count"`
	SuspiciousCount int       `json:"suspicious_count" db:"suspicious_count"`
	SafeCount       int       `json:"safe_count" db:"safe_count"`
	AvgScore        float64   `json:"avg_score" db:"avg_score"`
}

func (ma *MessageAnalysis) ToDict() map[string]interface{} {
	result := map[string]interface{}{
		"id":                ma.ID,
		"message_excerpt":   ma.MessageExcerpt,
		"ml_prediction":     ma.MLPrediction,
		"ml_confidence":     ma.MLConfidence,
		"overall_score":     ma.OverallScore,
		"verdict":           ma.Verdict,
		"urls_found":        ma.URLsFound,
		"full_results":      ma.FullResults,
		"analysis_success":  ma.AnalysisSuccess,
		"error_message":     ma.ErrorMessage,
		"analysis_duration": ma.AnalysisDuration,
	}
	if !ma.CreatedAt.IsZero() {
		result["created_at"] = ma.CreatedAt.Format(time.RFC3339)
	}
	return result
}
