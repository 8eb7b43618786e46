package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/cache"
	"github.com/hoopsight/points-api/internal/features"
	"github.com/hoopsight/points-api/internal/fetch"
	"github.com/hoopsight/points-api/internal/forecast"
	"github.com/hoopsight/points-api/internal/models"
	"github.com/hoopsight/points-api/internal/nba"
)

type analysisService struct {
	source    nba.StatsSource
	fetcher   *fetch.Fetcher
	pool      *fetch.Pool
	engineer  *features.Engineer
	trainer   *forecast.Trainer
	cache     cache.Store
	rosterTTL time.Duration
	logger    *zap.SugaredLogger
}

func NewAnalysisService(
	source nba.StatsSource,
	fetcher *fetch.Fetcher,
	pool *fetch.Pool,
	engineer *features.Engineer,
	trainer *forecast.Trainer,
	store cache.Store,
	rosterTTL time.Duration,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		source:    source,
		fetcher:   fetcher,
		pool:      pool,
		engineer:  engineer,
		trainer:   trainer,
		cache:     store,
		rosterTTL: rosterTTL,
		logger:    logger.Sugar(),
	}
}

func (s *analysisService) Teams() []string {
	return nba.TeamAbbreviations()
}

// Roster resolves a team and returns its roster snapshot, cached with the
// same TTL as game logs since rosters change at most daily.
func (s *analysisService) Roster(ctx context.Context, abbreviation string) (models.TeamIdentity, error) {
	team, err := s.source.ResolveTeam(ctx, abbreviation)
	if err != nil {
		return models.TeamIdentity{}, err
	}

	key := "roster:" + team.Abbreviation
	if data, err := s.cache.Get(ctx, key); err == nil {
		var roster []string
		if json.Unmarshal(data, &roster) == nil {
			team.Roster = roster
			return team, nil
		}
	}

	season := s.fetcher.Seasons()[0]
	roster, err := s.source.ResolveRoster(ctx, team.ID, season)
	if err != nil {
		return models.TeamIdentity{}, fmt.Errorf("roster %s: %w", team.Abbreviation, err)
	}
	team.Roster = roster

	if data, err := json.Marshal(roster); err == nil {
		if cerr := s.cache.Set(ctx, key, data, s.rosterTTL); cerr != nil {
			s.logger.Warnw("Failed to cache roster", "team", team.Abbreviation, "error", cerr)
		}
	}
	return team, nil
}

// AnalyzePlayer runs fetch, feature engineering, training, and reporting
// for one player.
func (s *analysisService) AnalyzePlayer(ctx context.Context, playerName string) (models.Report, error) {
	rows, err := s.fetcher.FetchPlayerData(ctx, playerName)
	if err != nil {
		return models.Report{}, err
	}
	return s.analyzeRows(playerName, rows)
}

// AnalyzeTeam fans the fetch out over the team's roster and analyzes
// every player that produced data. Players whose fetch or modeling fails
// become warnings, never batch failures.
func (s *analysisService) AnalyzeTeam(ctx context.Context, abbreviation string) (models.RosterReport, error) {
	team, err := s.Roster(ctx, abbreviation)
	if err != nil {
		return models.RosterReport{}, err
	}

	data, warnings := s.pool.FetchAllPlayers(ctx, team.Roster)

	result := models.RosterReport{
		Team:     team.Abbreviation,
		Reports:  make(map[string]models.Report, len(data)),
		Warnings: warnings,
	}
	for player, rows := range data {
		report, err := s.analyzeRows(player, rows)
		if err != nil {
			s.logger.Warnw("Analysis failed for roster player",
				"player", player,
				"error", err,
			)
			result.Warnings = append(result.Warnings, fmt.Sprintf("analysis failed for player: %s", player))
			continue
		}
		result.Reports[player] = report
	}
	return result, nil
}

func (s *analysisService) analyzeRows(playerName string, rows []models.GameLogRow) (models.Report, error) {
	engineered, err := s.engineer.Engineer(rows)
	if err != nil {
		return models.Report{}, fmt.Errorf("player %s: %w", playerName, err)
	}

	x, y := s.engineer.Matrix(engineered)
	outcome, err := s.trainer.Train(x, y)
	if err != nil {
		return models.Report{}, fmt.Errorf("player %s: %w", playerName, err)
	}

	s.logger.Infow("Analysis complete",
		"player", playerName,
		"games", len(rows),
		"outcome", forecast.Summary(outcome),
	)

	return Summarize(playerName, s.fetcher.Seasons(), engineered, outcome), nil
}
