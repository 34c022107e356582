// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/swarai-git/digital-literacy-assistant/internal/classifier"
	"github.com/swarai-git/digital-literacy-assistant/internal/safebrowsing"
)

type stubClassifier struct {
	pred classifier.Prediction
	err  error
}

func (s stubClassifier) Classify(_ context.Context, _ string) (classifier.Prediction, error) {
	return s.pred, s.err
}

type stubIntel struct {
	report safebrowsing.ThreatReport
	called bool
}

func (s *stubIntel) CheckURLs(_ context.Context, urls []string) safebrowsing.ThreatReport {
	s.called = true
	s.report.CheckedURLs = urls
	return s.report
}

func boolPtr(b bool) *bool { return &b }

func TestAnalyzeMessage_StructuralOnly(t *testing.T) {
	agg := NewAggregator(nil, nil)

	a := agg.AnalyzeMessage(context.Background(), "log in at http://192.168.1.100/bank/login now")

	if a.URLsFound != 1 {
		t.Fatalf("urls found = %d, want 1", a.URLsFound)
	}
	if a.OverallScore < 40 {
		t.Errorf("score = %d, want >= 40 from structural risk", a.OverallScore)
	}
	if a.Verdict == VerdictSafe {
		t.Error("IP-literal http link should not be verdicted safe")
	}
	if a.MLAvailable {
		t.Error("no classifier configured, MLAvailable must be false")
	}
	if !strings.Contains(a.Recommendation, "unavailable") {
		t.Errorf("recommendation should note missing classifier: %s", a.Recommendation)
	}
}

func TestAnalyzeMessage_ScamClassifierRaisesScore(t *testing.T) {
	agg := NewAggregator(stubClassifier{
		pred: classifier.Prediction{Label: classifier.LabelScam, Confidence: 95},
	}, nil)

	a := agg.AnalyzeMessage(context.Background(), "Congratulations! You won the lottery, claim now!")

	if a.OverallScore != 95 {
		t.Errorf("score = %d, want 95 (ML scam confidence)", a.OverallScore)
	}
	if a.Verdict != VerdictScam {
		t.Errorf("verdict = %s, want scam", a.Verdict)
	}
	if !a.MLAvailable || a.MLPrediction != "scam" {
		t.Errorf("ML fields not populated: %+v", a)
	}
}

func TestAnalyzeMessage_SafeClassifierCannotLowerStructuralRisk(t *testing.T) {
	agg := NewAggregator(stubClassifier{
		pred: classifier.Prediction{Label: classifier.LabelSafe, Confidence: 99},
	}, nil)

	a := agg.AnalyzeMessage(context.Background(), "see https://www.paypa1.com/signin")

	if a.OverallScore < 40 {
		t.Errorf("score = %d; a safe ML label must not erase a typosquat", a.OverallScore)
	}
}

func TestAnalyzeMessage_ClassifierFailureIsReported(t *testing.T) {
	agg := NewAggregator(stubClassifier{err: errors.New("sidecar down")}, nil)

	a := agg.AnalyzeMessage(context.Background(), "hello https://www.google.com")

	if a.MLAvailable {
		t.Error("failed classifier must not be reported as available")
	}
	if a.Verdict != VerdictSafe {
		t.Errorf("verdict = %s, want safe", a.Verdict)
	}
}

func TestAnalyzeMessage_ConfirmedThreatDominates(t *testing.T) {
	intel := &stubIntel{report: safebrowsing.ThreatReport{
		Safe: boolPtr(false),
		Threats: []safebrowsing.ThreatMatch{
			{URL: "https://www.google.com", ThreatType: "Malware"},
		},
	}}
	agg := NewAggregator(nil, intel)

	a := agg.AnalyzeMessage(context.Background(), "click https://www.google.com please")

	if !intel.called {
		t.Fatal("threat intel was not consulted")
	}
	if a.OverallScore < 90 {
		t.Errorf("score = %d, want >= 90 for a confirmed threat", a.OverallScore)
	}
	if a.Verdict != VerdictScam {
		t.Errorf("verdict = %s, want scam", a.Verdict)
	}
}

func TestAnalyzeMessage_UnavailableIntelIsNotSafe(t *testing.T) {
	intel := &stubIntel{report: safebrowsing.ThreatReport{Safe: nil, Err: "quota"}}
	agg := NewAggregator(nil, intel)

	a := agg.AnalyzeMessage(context.Background(), "click http://192.168.1.100/bank/login")

	if a.SafeBrowsing == nil || a.SafeBrowsing.Safe != nil {
		t.Error("unavailable lookup must surface as nil Safe, not a verdict")
	}
	// Structural risk still stands on its own.
	if a.OverallScore < 40 {
		t.Errorf("score = %d, want structural risk preserved", a.OverallScore)
	}
}

func TestAnalyzeMessage_NoURLsSkipsIntel(t *testing.T) {
	intel := &stubIntel{report: safebrowsing.ThreatReport{Safe: boolPtr(true)}}
	agg := NewAggregator(nil, intel)

	a := agg.AnalyzeMessage(context.Background(), "plain text, no links here")

	if intel.called {
		t.Error("threat intel must not be called without URLs")
	}
	if a.URLsFound != 0 || len(a.URLAnalyses) != 0 {
		t.Errorf("unexpected URL results: %+v", a)
	}
}

func TestAnalyzeMessage_DeterministicURLOrder(t *testing.T) {
	agg := NewAggregator(nil, nil)
	text := "see http://zzz-example.com and http://aaa-example.com"

	first := agg.AnalyzeMessage(context.Background(), text)
	second := agg.AnalyzeMessage(context.Background(), text)

	if len(first.URLAnalyses) != len(second.URLAnalyses) {
		t.Fatal("result counts differ between runs")
	}
	for i := range first.URLAnalyses {
		if first.URLAnalyses[i].URL != second.URLAnalyses[i].URL {
			t.Errorf("order differs at %d: %s vs %s",
				i, first.URLAnalyses[i].URL, second.URLAnalyses[i].URL)
		}
	}
	if first.URLAnalyses[0].URL > first.URLAnalyses[1].URL {
		t.Error("analyses not sorted by URL")
	}
}
