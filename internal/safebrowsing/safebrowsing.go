// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package safebrowsing looks URLs up against the Google Safe Browsing
// v4 threatMatches API. It is a corroborating external collaborator:
// its verdict never feeds the structural risk score, and a failed
// lookup is reported as "unavailable", never as safe or unsafe.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/swarai-git/digital-literacy-assistant/internal/telemetry"
)

const (
	defaultEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
	defaultTimeout  = 10 * time.Second

	clientID      = "digital-literacy-assistant"
	clientVersion = "1.0.0"
)

var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

type ThreatMatch struct {
	URL         string `json:"url"`
	ThreatType  string `json:"threat_type"`
	Platform    string `json:"platform"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ThreatReport is tri-state: Safe == nil means the lookup could not be
// completed and the caller must render "unknown", not a verdict.
type ThreatReport struct {
	Safe        *bool         `json:"safe"`
	Threats     []ThreatMatch `json:"threats"`
	CheckedURLs []string      `json:"checked_urls"`
	Message     string        `json:"message,omitempty"`
	Err         string        `json:"error,omitempty"`
}

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	registry   *telemetry.Registry
	cache      *telemetry.TTLCache[ThreatReport]
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithTelemetry(r *telemetry.Registry) Option {
	return func(c *Client) { c.registry = r }
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      telemetry.NewTTLCache[ThreatReport]("safe_browsing", 512, 15*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string     `json:"threatTypes"`
		PlatformTypes    []string     `json:"platformTypes"`
		ThreatEntryTypes []string     `json:"threatEntryTypes"`
		ThreatEntries    []threatSpec `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatSpec struct {
	URL string `json:"url"`
}

type apiResponse struct {
	Matches []struct {
		ThreatType   string `json:"threatType"`
		PlatformType string `json:"platformType"`
		Threat       struct {
			URL string `json:"url"`
		} `json:"threat"`
	} `json:"matches"`
}

// CheckURL checks a single URL.
func (c *Client) CheckURL(ctx context.Context, url string) ThreatReport {
	return c.CheckURLs(ctx, []string{url})
}

// CheckURLs checks a batch of URLs in one API call. Results are cached
// briefly keyed on the sorted URL set.
func (c *Client) CheckURLs(ctx context.Context, urls []string) ThreatReport {
	if len(urls) == 0 {
		safe := true
		return ThreatReport{Safe: &safe, Threats: []ThreatMatch{}, CheckedURLs: []string{}, Message: "No URLs provided"}
	}

	key := cacheKey(urls)
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	if c.registry != nil && c.registry.InCooldown(telemetry.ProviderSafeBrowsing) {
		return unavailable(urls, "provider in cooldown after repeated failures")
	}

	report := c.lookup(ctx, urls)
	if report.Safe != nil {
		c.cache.Set(key, report)
	}
	return report
}

func (c *Client) lookup(ctx context.Context, urls []string) ThreatReport {
	start := time.Now()

	var req apiRequest
	req.Client.ClientID = clientID
	req.Client.ClientVersion = clientVersion
	req.ThreatInfo.ThreatTypes = threatTypes
	req.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	req.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	for _, u := range urls {
		req.ThreatInfo.ThreatEntries = append(req.ThreatInfo.ThreatEntries, threatSpec{URL: u})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return c.fail(urls, fmt.Sprintf("encode request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return c.fail(urls, fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.fail(urls, fmt.Sprintf("network error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return c.fail(urls, fmt.Sprintf("API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return c.fail(urls, fmt.Sprintf("decode response: %v", err))
	}

	if c.registry != nil {
		c.registry.RecordSuccess(telemetry.ProviderSafeBrowsing, time.Since(start))
	}

	if len(parsed.Matches) == 0 {
		safe := true
		return ThreatReport{
			Safe:        &safe,
			Threats:     []ThreatMatch{},
			CheckedURLs: urls,
			Message:     "No threats detected",
		}
	}

	threats := make([]ThreatMatch, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		threats = append(threats, ThreatMatch{
			URL:         m.Threat.URL,
			ThreatType:  formatThreatType(m.ThreatType),
			Platform:    m.PlatformType,
			Severity:    threatSeverity(m.ThreatType),
			Description: threatDescription(m.ThreatType),
		})
	}

	unsafe := false
	return ThreatReport{
		Safe:        &unsafe,
		Threats:     threats,
		CheckedURLs: urls,
		Message:     fmt.Sprintf("Found %d threat(s)", len(threats)),
	}
}

func (c *Client) fail(urls []string, msg string) ThreatReport {
	slog.Warn("Safe Browsing lookup failed", "error", msg, "urls", len(urls))
	if c.registry != nil {
		c.registry.RecordFailure(telemetry.ProviderSafeBrowsing, msg)
	}
	return unavailable(urls, msg)
}

func unavailable(urls []string, msg string) ThreatReport {
	return ThreatReport{
		Safe:        nil,
		Threats:     []ThreatMatch{},
		CheckedURLs: urls,
		Err:         msg,
	}
}

func cacheKey(urls []string) string {
	sorted := make([]string, len(urls))
	copy(sorted, urls)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func formatThreatType(threatType string) string {
	switch threatType {
	case "MALWARE":
		return "Malware"
	case "SOCIAL_ENGINEERING":
		return "Phishing/Social Engineering"
	case "UNWANTED_SOFTWARE":
		return "Unwanted Software"
	case "POTENTIALLY_HARMFUL_APPLICATION":
		return "Potentially Harmful"
	default:
		return threatType
	}
}

func threatSeverity(threatType string) string {
	switch threatType {
	case "MALWARE", "SOCIAL_ENGINEERING":
		return "high"
	default:
		return "medium"
	}
}

func threatDescription(threatType string) string {
	switch threatType {
	case "MALWARE":
		return "This site may install malicious software that can harm your computer or steal your data"
	case "SOCIAL_ENGINEERING":
		return "This site may be a phishing attempt trying to steal your passwords or personal information"
	case "UNWANTED_SOFTWARE":
		return "This site may try to install unwanted software on your device"
	case "POTENTIALLY_HARMFUL_APPLICATION":
		return "This site may contain potentially harmful applications"
	default:
		return "This site has been flagged as potentially dangerous"
	}
}
