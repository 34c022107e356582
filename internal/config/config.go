// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port               string
	AppVersion         string
	DatabaseURL        string
	SafeBrowsingAPIKey string
	ClassifierURL      string
	DNSResolver        string
	RateLimitPerMinute int
	Testing            bool
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	resolver := os.Getenv("DNS_RESOLVER")
	if resolver == "" {
		resolver = "1.1.1.1:53"
	}

	rateLimit := 30
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a positive integer, got %q", raw)
		}
		rateLimit = n
	}

	// DATABASE_URL, SAFE_BROWSING_API_KEY and CLASSIFIER_URL are all
	// optional. The analyzer runs without persistence and without the
	// external signals; each missing piece degrades its own feature.
	return &Config{
		Port:               port,
		AppVersion:         "1.4.2",
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SafeBrowsingAPIKey: os.Getenv("SAFE_BROWSING_API_KEY"),
		ClassifierURL:      os.Getenv("CLASSIFIER_URL"),
		DNSResolver:        resolver,
		RateLimitPerMinute: rateLimit,
		Testing:            false,
	}, nil
}
