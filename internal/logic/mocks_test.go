package logic

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hoopsight/points-api/internal/models"
)

// fakeSource implements nba.StatsSource with per-method hooks.
type fakeSource struct {
	mu sync.Mutex

	ResolveTeamFunc   func(ctx context.Context, abbreviation string) (models.TeamIdentity, error)
	ResolveRosterFunc func(ctx context.Context, teamID int, season string) ([]string, error)
	ResolvePlayerFunc func(ctx context.Context, fullName string) (models.PlayerIdentity, error)
	FetchLogFunc      func(ctx context.Context, playerID int, season string) ([]models.GameLogRow, error)

	rosterCalls int
}

func (f *fakeSource) ResolveTeam(ctx context.Context, abbreviation string) (models.TeamIdentity, error) {
	if f.ResolveTeamFunc != nil {
		return f.ResolveTeamFunc(ctx, abbreviation)
	}
	return models.TeamIdentity{ID: 1610612745, Abbreviation: abbreviation, Name: "Test Team"}, nil
}

func (f *fakeSource) ResolveRoster(ctx context.Context, teamID int, season string) ([]string, error) {
	f.mu.Lock()
	f.rosterCalls++
	f.mu.Unlock()
	if f.ResolveRosterFunc != nil {
		return f.ResolveRosterFunc(ctx, teamID, season)
	}
	return []string{"Player One", "Player Two"}, nil
}

func (f *fakeSource) ResolvePlayer(ctx context.Context, fullName string) (models.PlayerIdentity, error) {
	if f.ResolvePlayerFunc != nil {
		return f.ResolvePlayerFunc(ctx, fullName)
	}
	return models.PlayerIdentity{ID: 100 + len(fullName), Name: fullName}, nil
}

func (f *fakeSource) FetchLog(ctx context.Context, playerID int, season string) ([]models.GameLogRow, error) {
	if f.FetchLogFunc != nil {
		return f.FetchLogFunc(ctx, playerID, season)
	}
	return syntheticLog(season, int64(playerID), 30), nil
}

func (f *fakeSource) calledRoster() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rosterCalls
}

// syntheticLog produces a learnable game log: points track minutes and
// attempts with a little noise.
func syntheticLog(season string, seed int64, n int) []models.GameLogRow {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]models.GameLogRow, n)
	for i := range rows {
		minutes := 24 + rng.Float64()*16
		fga := 10 + rng.Float64()*12
		fgm := fga * (0.4 + rng.Float64()*0.15)
		rows[i] = models.GameLogRow{
			GameDate: "2025-01-01",
			Matchup:  "HOU vs. LAL",
			Season:   season,
			Minutes:  minutes,
			FGM:      fgm,
			FGA:      fga,
			FGPct:    fgm / fga,
			REB:      3 + rng.Float64()*7,
			AST:      2 + rng.Float64()*6,
			STL:      rng.Float64() * 3,
			BLK:      rng.Float64() * 2,
			Points:   2*fgm + rng.NormFloat64()*2,
		}
	}
	return rows
}
