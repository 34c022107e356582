// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package urlcheck scores URLs for phishing likelihood using a
// deterministic, explainable rule engine: typosquat detection against
// known brands, suspicious TLDs, IP-literal hosts, keyword matching,
// and a whitelist override. Everything is pure string analysis — no
// DNS, no fetching, no stored state.
package urlcheck

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// UrlAnalysis is the scored verdict for one URL. RiskScore is the sum
// of triggered rule weights clamped to [0,100]; RedFlags are in rule
// evaluation order. Err is set only on the degraded malformed-URL
// path, where IsSafe is false regardless of the score.
type UrlAnalysis struct {
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Subdomain string    `json:"subdomain"`
	Scheme    string    `json:"scheme"`
	RiskScore int       `json:"risk_score"`
	RedFlags  []RedFlag `json:"red_flags"`
	IsSafe    bool      `json:"is_safe"`
	Err       string    `json:"error,omitempty"`
}

// Analyze scores one URL. It never fails: a URL that cannot be
// decomposed comes back as a medium-risk "Malformed URL" analysis with
// Err set, so one broken link never aborts the rest of a message.
func Analyze(rawURL string) UrlAnalysis {
	parts, err := Decompose(rawURL)
	if err != nil {
		return UrlAnalysis{
			URL:       rawURL,
			RiskScore: malformedRiskScore,
			RedFlags: []RedFlag{{
				Flag:        "Malformed URL",
				Severity:    SeverityMedium,
				Explanation: "URL structure appears invalid or malformed",
			}},
			IsSafe: false,
			Err:    fmt.Sprintf("failed to parse URL: %v", err),
		}
	}

	score := 0
	flags := []RedFlag{}

	for _, r := range scoringRules {
		if hit := r(parts, rawURL); hit != nil {
			score += hit.weight
			flags = append(flags, hit.flag)
		}
	}

	if adj := whitelistAdjustment(parts); adj != nil {
		score += adj.weight
		if score < 0 {
			score = 0
		}
		flags = append(flags, adj.flag)
	}

	if score > 100 {
		score = 100
	}

	return UrlAnalysis{
		URL:       rawURL,
		Domain:    parts.FullDomain,
		Subdomain: parts.Subdomain,
		Scheme:    parts.Scheme,
		RiskScore: score,
		RedFlags:  flags,
		IsSafe:    score < SafeScoreThreshold,
	}
}

const batchWorkers = 8

// BatchAnalyze scores every URL, one result per input in input order.
// No deduplication happens here; that is Extract's job. Items are
// independent, so the work fans out across a bounded worker pool.
func BatchAnalyze(urls []string) []UrlAnalysis {
	results := make([]UrlAnalysis, len(urls))

	var g errgroup.Group
	g.SetLimit(batchWorkers)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = Analyze(u)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
