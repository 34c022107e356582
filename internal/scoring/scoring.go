// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package scoring merges the three independent signals — the
// statistical text classifier, the structural URL analyses, and the
// Safe Browsing lookup — into one explained message-level assessment.
package scoring

import (
	"context"
	"log/slog"
	"sort"

	"github.com/swarai-git/digital-literacy-assistant/internal/classifier"
	"github.com/swarai-git/digital-literacy-assistant/internal/safebrowsing"
	"github.com/swarai-git/digital-literacy-assistant/internal/urlcheck"
)

const (
	VerdictScam       = "scam"
	VerdictSuspicious = "suspicious"
	VerdictSafe       = "safe"

	scamThreshold       = 70
	suspiciousThreshold = urlcheck.SafeScoreThreshold

	// A confirmed Safe Browsing hit outranks everything structural.
	confirmedThreatScore = 90
)

// Assessment is the combined verdict for one submitted message.
type Assessment struct {
	OverallScore   int                        `json:"overall_confidence_score"`
	Verdict        string                     `json:"verdict"`
	Recommendation string                     `json:"recommendation"`
	MLPrediction   string                     `json:"ml_prediction,omitempty"`
	MLConfidence   float64                    `json:"ml_confidence,omitempty"`
	MLAvailable    bool                       `json:"ml_available"`
	URLsFound      int                        `json:"urls_found"`
	URLAnalyses    []urlcheck.UrlAnalysis     `json:"url_analyses"`
	SafeBrowsing   *safebrowsing.ThreatReport `json:"safe_browsing_check,omitempty"`
	RedFlags       []urlcheck.RedFlag         `json:"red_flags"`
}

// ThreatChecker is the slice of the Safe Browsing client the
// aggregator needs; tests substitute a stub.
type ThreatChecker interface {
	CheckURLs(ctx context.Context, urls []string) safebrowsing.ThreatReport
}

type Aggregator struct {
	textClassifier classifier.Classifier // nil when the sidecar is not configured
	threatIntel    ThreatChecker         // nil when no API key is configured
}

func NewAggregator(cls classifier.Classifier, intel ThreatChecker) *Aggregator {
	return &Aggregator{textClassifier: cls, threatIntel: intel}
}

// AnalyzeMessage runs the full pipeline on one message. The structural
// analysis always happens; the two external signals are consulted when
// configured and degrade to "unavailable" rather than blocking.
func (a *Aggregator) AnalyzeMessage(ctx context.Context, text string) Assessment {
	urls := urlcheck.Extract(text)
	sort.Strings(urls)

	analyses := urlcheck.BatchAnalyze(urls)

	assessment := Assessment{
		URLsFound:   len(urls),
		URLAnalyses: analyses,
		RedFlags:    mergeFlags(analyses),
	}

	score := maxStructuralRisk(analyses)

	if a.textClassifier != nil {
		pred, err := a.textClassifier.Classify(ctx, text)
		if err != nil {
			slog.Warn("Classifier unavailable", "error", err)
		} else {
			assessment.MLAvailable = true
			assessment.MLPrediction = string(pred.Label)
			assessment.MLConfidence = pred.Confidence

			switch pred.Label {
			case classifier.LabelScam:
				// The ML verdict can only raise the score, never
				// vouch a structurally risky message back down.
				if int(pred.Confidence) > score {
					score = int(pred.Confidence)
				}
			case classifier.LabelSuspicious:
				if half := int(pred.Confidence / 2); half > score {
					score = half
				}
			}
		}
	}

	if a.threatIntel != nil && len(urls) > 0 {
		report := a.threatIntel.CheckURLs(ctx, urls)
		assessment.SafeBrowsing = &report
		if report.Safe != nil && !*report.Safe && score < confirmedThreatScore {
			score = confirmedThreatScore
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	assessment.OverallScore = score
	assessment.Verdict = verdictFor(score)
	assessment.Recommendation = recommendationFor(assessment)
	return assessment
}

func maxStructuralRisk(analyses []urlcheck.UrlAnalysis) int {
	max := 0
	for _, a := range analyses {
		if a.RiskScore > max {
			max = a.RiskScore
		}
	}
	return max
}

func mergeFlags(analyses []urlcheck.UrlAnalysis) []urlcheck.RedFlag {
	flags := []urlcheck.RedFlag{}
	for _, a := range analyses {
		flags = append(flags, a.RedFlags...)
	}
	return flags
}

func verdictFor(score int) string {
	switch {
	case score >= scamThreshold:
		return VerdictScam
	case score >= suspiciousThreshold:
		return VerdictSuspicious
	default:
		return VerdictSafe
	}
}

func recommendationFor(a Assessment) string {
	var rec string
	switch a.Verdict {
	case VerdictScam:
		rec = "This message shows strong signs of a scam. Do not click any links, reply, or share personal details."
	case VerdictSuspicious:
		rec = "This message looks suspicious. Verify the sender through an official channel before acting on it."
	default:
		rec = "No strong warning signs found. Stay cautious with links and never share passwords or OTPs."
	}

	if a.MLAvailable {
		return rec
	}
	return rec + " (Text classifier was unavailable; this verdict relies on URL analysis alone.)"
}
