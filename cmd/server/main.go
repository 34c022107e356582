// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"log/slog"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/swarai-git/digital-literacy-assistant/internal/classifier"
	"github.com/swarai-git/digital-literacy-assistant/internal/config"
	"github.com/swarai-git/digital-literacy-assistant/internal/db"
	"github.com/swarai-git/digital-literacy-assistant/internal/handlers"
	"github.com/swarai-git/digital-literacy-assistant/internal/middleware"
	"github.com/swarai-git/digital-literacy-assistant/internal/safebrowsing"
	"github.com/swarai-git/digital-literacy-assistant/internal/scoring"
	"github.com/swarai-git/digital-literacy-assistant/internal/telemetry"
	"github.com/swarai-git/digital-literacy-assistant/internal/urlinfo"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	// Local development keeps secrets in .env; deployments set real
	// environment variables and have no such file.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var database *db.Database
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
	} else {
		slog.Warn("DATABASE_URL not set, history and stats disabled")
	}

	registry := telemetry.NewRegistry()

	var textClassifier classifier.Classifier
	if cfg.ClassifierURL != "" {
		textClassifier = classifier.NewHTTP(cfg.ClassifierURL, classifier.WithTelemetry(registry))
		slog.Info("Text classifier enabled", "url", cfg.ClassifierURL)
	} else {
		slog.Warn("CLASSIFIER_URL not set, running on URL analysis alone")
	}

	var threatIntel scoring.ThreatChecker
	if cfg.SafeBrowsingAPIKey != "" {
		threatIntel = safebrowsing.New(cfg.SafeBrowsingAPIKey, safebrowsing.WithTelemetry(registry))
		slog.Info("Safe Browsing lookups enabled")
	} else {
		slog.Warn("SAFE_BROWSING_API_KEY not set, threat intel disabled")
	}

	aggregator := scoring.NewAggregator(textClassifier, threatIntel)
	urlInfo := urlinfo.New(
		urlinfo.WithServer(cfg.DNSResolver),
		urlinfo.WithTelemetry(registry),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RequestContext())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewInMemoryRateLimiter(cfg.RateLimitPerMinute)
	slog.Info("Rate limiter initialized", "backend", "in-memory", "max_per_minute", cfg.RateLimitPerMinute)

	analysisHandler := handlers.NewAnalysisHandler(database, aggregator, urlInfo)
	healthHandler := handlers.NewHealthHandler(database, registry, cfg.AppVersion)
	statsHandler := handlers.NewStatsHandler(database)

	router.GET("/health", healthHandler.HealthCheck)

	analyzeLimit := middleware.AnalyzeRateLimit(rateLimiter)
	router.POST("/analyze", analyzeLimit, analysisHandler.AnalyzeMessage)
	router.POST("/analyze/url", analyzeLimit, analysisHandler.AnalyzeURL)

	router.GET("/api/analysis/:id", analysisHandler.GetAnalysis)
	router.GET("/api/history", analysisHandler.History)
	router.GET("/api/stats", statsHandler.Stats)

	slog.Info("Starting server", "port", cfg.Port, "version", cfg.AppVersion)
	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
