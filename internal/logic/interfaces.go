package logic

import (
	"context"

	"github.com/hoopsight/points-api/internal/models"
)

// AnalysisService runs the full acquisition-and-prediction pipeline.
type AnalysisService interface {
	Teams() []string
	Roster(ctx context.Context, abbreviation string) (models.TeamIdentity, error)
	AnalyzePlayer(ctx context.Context, playerName string) (models.Report, error)
	AnalyzeTeam(ctx context.Context, abbreviation string) (models.RosterReport, error)
}

// ReportStore persists completed reports for the dashboard's history view.
type ReportStore interface {
	SaveReport(ctx context.Context, report models.Report) error
	RecentReports(ctx context.Context, limit int) ([]models.Report, error)
}
