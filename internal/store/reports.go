// Package store persists completed analysis reports so the dashboard can
// show a history of recent runs.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/models"
)

// PgPool is the subset of pgxpool.Pool the store needs, kept narrow so
// tests can supply a fake.
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type ReportStore struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewReportStore(pg PgPool, logger *zap.Logger) *ReportStore {
	return &ReportStore{pg: pg, logger: logger.Sugar()}
}

// Migrate creates the reports table if needed. Idempotent.
func (s *ReportStore) Migrate(ctx context.Context) error {
	_, err := s.pg.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_reports (
			id         UUID PRIMARY KEY,
			player     TEXT NOT NULL,
			seasons    TEXT NOT NULL,
			best_model TEXT NOT NULL,
			best_score DOUBLE PRECISION NOT NULL,
			games      INT NOT NULL,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrating analysis_reports: %w", err)
	}
	return nil
}

// SaveReport writes one completed report. The full report rides along as
// JSON so the read side never needs to re-run the pipeline.
func (s *ReportStore) SaveReport(ctx context.Context, report models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	_, err = s.pg.Exec(ctx, `
		INSERT INTO analysis_reports (id, player, seasons, best_model, best_score, games, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`,
		report.ID,
		report.Player,
		strings.Join(report.Seasons, ","),
		report.BestModel,
		report.ModelScores[report.BestModel],
		report.Games,
		payload,
		report.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", report.ID, err)
	}
	return nil
}

// RecentReports returns up to limit reports, newest first.
func (s *ReportStore) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pg.Query(ctx, `
		SELECT payload FROM analysis_reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		var report models.Report
		if err := json.Unmarshal(payload, &report); err != nil {
			s.logger.Warnw("Skipping unreadable report payload", "error", err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
