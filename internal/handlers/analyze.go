package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hoopsight/points-api/internal/features"
	"github.com/hoopsight/points-api/internal/fetch"
	"github.com/hoopsight/points-api/internal/forecast"
	"github.com/hoopsight/points-api/internal/nba"
)

type analyzeRequest struct {
	Player string `json:"player" validate:"required,min=2"`
}

// GetTeams returns the team catalog abbreviations.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"teams": h.analysis.Teams(),
	})
}

// GetRoster returns a team's roster snapshot.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	abbr := chi.URLParam(r, "abbr")
	team, err := h.analysis.Roster(r.Context(), abbr)
	if err != nil {
		if errors.Is(err, nba.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "team not found: "+abbr)
			return
		}
		h.logger.Errorw("Roster lookup failed", "team", abbr, "error", err)
		h.errorResponse(w, http.StatusBadGateway, "failed to fetch roster")
		return
	}
	h.jsonResponse(w, http.StatusOK, team)
}

// AnalyzePlayer runs the pipeline for a single player.
func (h *Handler) AnalyzePlayer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "player name is required")
		return
	}

	report, err := h.analysis.AnalyzePlayer(r.Context(), req.Player)
	if err != nil {
		h.writeAnalysisError(w, req.Player, err)
		return
	}

	h.persistReport(r, report.Player, report.ID, func() error {
		return h.reports.SaveReport(r.Context(), report)
	})
	h.jsonResponse(w, http.StatusOK, report)
}

// AnalyzeTeam runs the pipeline for every player on a roster.
func (h *Handler) AnalyzeTeam(w http.ResponseWriter, r *http.Request) {
	abbr := chi.URLParam(r, "abbr")
	result, err := h.analysis.AnalyzeTeam(r.Context(), abbr)
	if err != nil {
		if errors.Is(err, nba.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "team not found: "+abbr)
			return
		}
		h.logger.Errorw("Team analysis failed", "team", abbr, "error", err)
		h.errorResponse(w, http.StatusBadGateway, "failed to analyze team")
		return
	}

	for _, report := range result.Reports {
		h.persistReport(r, report.Player, report.ID, func() error {
			return h.reports.SaveReport(r.Context(), report)
		})
	}
	h.jsonResponse(w, http.StatusOK, result)
}

// GetRecentReports returns persisted reports, newest first.
func (h *Handler) GetRecentReports(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		h.errorResponse(w, http.StatusNotImplemented, "report history is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	reports, err := h.reports.RecentReports(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("Recent reports query failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to load reports")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
	})
}

func (h *Handler) writeAnalysisError(w http.ResponseWriter, player string, err error) {
	switch {
	case errors.Is(err, nba.ErrNotFound):
		h.errorResponse(w, http.StatusNotFound, "player not found: "+player)
	case errors.Is(err, fetch.ErrNoData):
		h.errorResponse(w, http.StatusNotFound, "no data available for player: "+player)
	case errors.Is(err, features.ErrEmptyInput), errors.Is(err, forecast.ErrTooFewRows):
		h.errorResponse(w, http.StatusUnprocessableEntity, "not enough games to analyze player: "+player)
	default:
		h.logger.Errorw("Player analysis failed", "player", player, "error", err)
		h.errorResponse(w, http.StatusBadGateway, "failed to analyze player")
	}
}

// persistReport saves a report when history is configured. Persistence
// failures are logged, never surfaced to the caller.
func (h *Handler) persistReport(r *http.Request, player, id string, save func() error) {
	if h.reports == nil {
		return
	}
	if err := save(); err != nil {
		h.logger.Warnw("Failed to persist report", "player", player, "report_id", id, "error", err)
	}
}
