package handlers

import (
	"context"

	"github.com/hoopsight/points-api/internal/models"
)

type MockAnalysisService struct {
	TeamsFunc         func() []string
	RosterFunc        func(ctx context.Context, abbreviation string) (models.TeamIdentity, error)
	AnalyzePlayerFunc func(ctx context.Context, playerName string) (models.Report, error)
	AnalyzeTeamFunc   func(ctx context.Context, abbreviation string) (models.RosterReport, error)
}

func (m *MockAnalysisService) Teams() []string {
	if m.TeamsFunc != nil {
		return m.TeamsFunc()
	}
	return []string{"BOS", "HOU", "LAL"}
}

func (m *MockAnalysisService) Roster(ctx context.Context, abbreviation string) (models.TeamIdentity, error) {
	if m.RosterFunc != nil {
		return m.RosterFunc(ctx, abbreviation)
	}
	return models.TeamIdentity{Abbreviation: abbreviation}, nil
}

func (m *MockAnalysisService) AnalyzePlayer(ctx context.Context, playerName string) (models.Report, error) {
	if m.AnalyzePlayerFunc != nil {
		return m.AnalyzePlayerFunc(ctx, playerName)
	}
	return models.Report{Player: playerName}, nil
}

func (m *MockAnalysisService) AnalyzeTeam(ctx context.Context, abbreviation string) (models.RosterReport, error) {
	if m.AnalyzeTeamFunc != nil {
		return m.AnalyzeTeamFunc(ctx, abbreviation)
	}
	return models.RosterReport{Team: abbreviation}, nil
}

type MockReportStore struct {
	SaveReportFunc    func(ctx context.Context, report models.Report) error
	RecentReportsFunc func(ctx context.Context, limit int) ([]models.Report, error)

	saved []models.Report
}

func (m *MockReportStore) SaveReport(ctx context.Context, report models.Report) error {
	m.saved = append(m.saved, report)
	if m.SaveReportFunc != nil {
		return m.SaveReportFunc(ctx, report)
	}
	return nil
}

func (m *MockReportStore) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	if m.RecentReportsFunc != nil {
		return m.RecentReportsFunc(ctx, limit)
	}
	return nil, nil
}
