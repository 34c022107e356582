// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swarai-git/digital-literacy-assistant/internal/models"
)

type Database struct {
	Pool *pgxpool.Pool
}

func Connect(databaseURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 2 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &Database{Pool: pool}
	if err := db.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("Database connected successfully")
	return db, nil
}

func (d *Database) Close() {
	if d.Pool != nil {
		d.Pool.Close()
		slog.Info("Database connection closed")
	}
}

func (d *Database) HealthCheck(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS message_analyses (
	id                SERIAL PRIMARY KEY,
	message_excerpt   TEXT NOT NULL,
	ml_prediction     TEXT,
	ml_confidence     DOUBLE PRECISION,
	overall_score     INTEGER NOT NULL,
	verdict           TEXT NOT NULL,
	urls_found        INTEGER NOT NULL DEFAULT 0,
	full_results      JSONB,
	analysis_success  BOOLEAN NOT NULL DEFAULT TRUE,
	error_message     TEXT,
	analysis_duration DOUBLE PRECISION,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_message_analyses_created_at
	ON message_analyses (created_at DESC);
`

func (d *Database) ensureSchema(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (d *Database) SaveAnalysis(ctx context.Context, ma *models.MessageAnalysis) (int, error) {
	var id int
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO message_analyses
			(message_excerpt, ml_prediction, ml_confidence, overall_score,
			 verdict, urls_found, full_results, analysis_success,
			 error_message, analysis_duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		ma.MessageExcerpt, ma.MLPrediction, ma.MLConfidence, ma.OverallScore,
		ma.Verdict, ma.URLsFound, ma.FullResults, ma.AnalysisSuccess,
		ma.ErrorMessage, ma.AnalysisDuration,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}
	return id, nil
}

func (d *Database) GetAnalysis(ctx context.Context, id int) (*models.MessageAnalysis, error) {
	ma := &models.MessageAnalysis{}
	err := d.Pool.QueryRow(ctx, `
		SELECT id, message_excerpt, ml_prediction, ml_confidence,
		       overall_score, verdict, urls_found, full_results,
		       analysis_success, error_message, analysis_duration, created_at
		FROM message_analyses WHERE id = $1`, id,
	).Scan(
		&ma.ID, &ma.MessageExcerpt, &ma.MLPrediction, &ma.MLConfidence,
		&ma.OverallScore, &ma.Verdict, &ma.URLsFound, &ma.FullResults,
		&ma.AnalysisSuccess, &ma.ErrorMessage, &ma.AnalysisDuration, &ma.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis %d: %w", id, err)
	}
	return ma, nil
}

func (d *Database) RecentAnalyses(ctx context.Context, limit int) ([]*models.MessageAnalysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := d.Pool.Query(ctx, `
		SELECT id, message_excerpt, ml_prediction, ml_confidence,
		       overall_score, verdict, urls_found, full_results,
		       analysis_success, error_message, analysis_duration, created_at
		FROM message_analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []*models.MessageAnalysis
	for rows.Next() {
		ma := &models.MessageAnalysis{}
		if err := rows.Scan(
			&ma.ID, &ma.MessageExcerpt, &ma.MLPrediction, &ma.MLConfidence,
			&ma.OverallScore, &ma.Verdict, &ma.URLsFound, &ma.FullResults,
			&ma.AnalysisSuccess, &ma.ErrorMessage, &ma.AnalysisDuration, &ma.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		out = append(out, ma)
	}
	return out, rows.Err()
}

func (d *Database) DailyStats(ctx context.Context) (*models.DailyStats, error) {
	stats := &models.DailyStats{Date: time.Now().UTC().Truncate(24 * time.Hour)}
	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE verdict = 'scam'),
		       COUNT(*) FILTER (WHERE verdict = 'suspicious'),
		       COUNT(*) FILTER (WHERE verdict = 'safe'),
		       COALESCE(AVG(overall_score), 0)
		FROM message_analyses
		WHERE created_at >= date_trunc('day', NOW())`,
	).Scan(
		&stats.TotalAnalyses, &stats.ScamCount, &stats.SuspiciousCount,
		&stats.SafeCount, &stats.AvgScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily stats: %w", err)
	}
	return stats, nil
}
