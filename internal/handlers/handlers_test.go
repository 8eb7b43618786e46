package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/fetch"
	"github.com/hoopsight/points-api/internal/forecast"
	"github.com/hoopsight/points-api/internal/models"
	"github.com/hoopsight/points-api/internal/nba"
)

func newTestHandler(analysis *MockAnalysisService, reports *MockReportStore) http.Handler {
	cfg := Config{
		Analysis: analysis,
		Logger:   zap.NewNop(),
	}
	if reports != nil {
		cfg.Reports = reports
	}
	return New(cfg).Routes(nil)
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(&MockAnalysisService{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetTeams(t *testing.T) {
	handler := newTestHandler(&MockAnalysisService{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/teams", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Teams []string `json:"teams"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(resp.Teams))
	}
}

func TestGetRoster(t *testing.T) {
	analysis := &MockAnalysisService{
		RosterFunc: func(ctx context.Context, abbreviation string) (models.TeamIdentity, error) {
			return models.TeamIdentity{
				ID:           1610612745,
				Abbreviation: abbreviation,
				Name:         "Houston Rockets",
				Roster:       []string{"Player One", "Player Two"},
			}, nil
		},
	}
	handler := newTestHandler(analysis, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/teams/HOU/roster", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var team models.TeamIdentity
	if err := json.Unmarshal(rec.Body.Bytes(), &team); err != nil {
		t.Fatal(err)
	}
	if team.Abbreviation != "HOU" || len(team.Roster) != 2 {
		t.Fatalf("unexpected roster payload: %+v", team)
	}
}

func TestGetRosterUnknownTeam(t *testing.T) {
	analysis := &MockAnalysisService{
		RosterFunc: func(ctx context.Context, abbreviation string) (models.TeamIdentity, error) {
			return models.TeamIdentity{}, nba.ErrNotFound
		},
	}
	handler := newTestHandler(analysis, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/teams/ZZZ/roster", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAnalyzePlayer(t *testing.T) {
	analysis := &MockAnalysisService{
		AnalyzePlayerFunc: func(ctx context.Context, playerName string) (models.Report, error) {
			return models.Report{
				ID:        "report-1",
				Player:    playerName,
				Games:     60,
				BestModel: "XGBoost",
			}, nil
		},
	}
	reports := &MockReportStore{}
	handler := newTestHandler(analysis, reports)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/analyze", `{"player": "Test Player"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report models.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Player != "Test Player" || report.BestModel != "XGBoost" {
		t.Fatalf("unexpected report: %+v", report)
	}

	if len(reports.saved) != 1 || reports.saved[0].ID != "report-1" {
		t.Fatalf("expected the report to be persisted, got %+v", reports.saved)
	}
}

func TestAnalyzePlayerValidation(t *testing.T) {
	handler := newTestHandler(&MockAnalysisService{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"EmptyBody", ""},
		{"InvalidJSON", "{not json"},
		{"MissingPlayer", `{}`},
		{"ShortName", `{"player": "a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/v1/analyze", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAnalyzePlayerErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotFound", nba.ErrNotFound, http.StatusNotFound},
		{"NoData", fetch.ErrNoData, http.StatusNotFound},
		{"TooFewGames", forecast.ErrTooFewRows, http.StatusUnprocessableEntity},
		{"Upstream", errors.New("stats api down"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := &MockAnalysisService{
				AnalyzePlayerFunc: func(ctx context.Context, playerName string) (models.Report, error) {
					return models.Report{}, tt.err
				},
			}
			handler := newTestHandler(analysis, nil)

			rec := doRequest(t, handler, http.MethodPost, "/api/v1/analyze", `{"player": "Test Player"}`)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAnalyzePlayerPersistFailureIsNotFatal(t *testing.T) {
	reports := &MockReportStore{
		SaveReportFunc: func(ctx context.Context, report models.Report) error {
			return errors.New("postgres down")
		},
	}
	handler := newTestHandler(&MockAnalysisService{}, reports)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/analyze", `{"player": "Test Player"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("persistence failure must not fail the request, got %d", rec.Code)
	}
}

func TestAnalyzeTeam(t *testing.T) {
	analysis := &MockAnalysisService{
		AnalyzeTeamFunc: func(ctx context.Context, abbreviation string) (models.RosterReport, error) {
			return models.RosterReport{
				Team: abbreviation,
				Reports: map[string]models.Report{
					"Player One": {ID: "r1", Player: "Player One"},
					"Player Two": {ID: "r2", Player: "Player Two"},
				},
				Warnings: []string{"player not found: Ghost Player"},
			}, nil
		},
	}
	reports := &MockReportStore{}
	handler := newTestHandler(analysis, reports)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/teams/HOU/analyze", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result models.RosterReport
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Reports) != 2 || len(result.Warnings) != 1 {
		t.Fatalf("unexpected roster report: %+v", result)
	}
	if len(reports.saved) != 2 {
		t.Fatalf("expected both reports persisted, got %d", len(reports.saved))
	}
}

func TestGetRecentReportsWithoutStore(t *testing.T) {
	handler := newTestHandler(&MockAnalysisService{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/reports/recent", "")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 without a configured store, got %d", rec.Code)
	}
}

func TestGetRecentReports(t *testing.T) {
	var gotLimit int
	reports := &MockReportStore{
		RecentReportsFunc: func(ctx context.Context, limit int) ([]models.Report, error) {
			gotLimit = limit
			return []models.Report{{ID: "r1"}, {ID: "r2"}}, nil
		},
	}
	handler := newTestHandler(&MockAnalysisService{}, reports)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/reports/recent?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 2 {
		t.Errorf("expected limit 2, got %d", gotLimit)
	}

	var resp struct {
		Reports []models.Report `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(resp.Reports))
	}
}

func TestGetRecentReportsClampsLimit(t *testing.T) {
	var gotLimit int
	reports := &MockReportStore{
		RecentReportsFunc: func(ctx context.Context, limit int) ([]models.Report, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	handler := newTestHandler(&MockAnalysisService{}, reports)

	doRequest(t, handler, http.MethodGet, "/api/v1/reports/recent?limit=9000", "")
	if gotLimit != 20 {
		t.Errorf("out-of-range limit should fall back to 20, got %d", gotLimit)
	}
}

func TestReadyReportsBackends(t *testing.T) {
	cfg := Config{
		Analysis:  &MockAnalysisService{},
		Logger:    zap.NewNop(),
		RedisPing: func(ctx context.Context) error { return nil },
		PostgresPing: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}
	handler := New(cfg).Routes(nil)

	rec := doRequest(t, handler, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with a failing backend, got %d", rec.Code)
	}

	var resp struct {
		Ready  bool            `json:"ready"`
		Checks map[string]bool `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Ready || resp.Checks["postgres"] || !resp.Checks["redis"] {
		t.Fatalf("unexpected readiness payload: %+v", resp)
	}
}
