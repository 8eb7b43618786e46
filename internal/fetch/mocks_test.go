package fetch

import (
	"context"
	"sync"

	"github.com/hoopsight/points-api/internal/models"
	"github.com/hoopsight/points-api/internal/nba"
)

// fakeSource implements nba.StatsSource with per-method hooks and call
// counting.
type fakeSource struct {
	mu sync.Mutex

	ResolvePlayerFunc func(ctx context.Context, fullName string) (models.PlayerIdentity, error)
	FetchLogFunc      func(ctx context.Context, playerID int, season string) ([]models.GameLogRow, error)

	fetchLogCalls int
	resolveCalls  int
}

func (f *fakeSource) ResolveTeam(ctx context.Context, abbreviation string) (models.TeamIdentity, error) {
	return models.TeamIdentity{}, nba.ErrNotFound
}

func (f *fakeSource) ResolveRoster(ctx context.Context, teamID int, season string) ([]string, error) {
	return nil, nil
}

func (f *fakeSource) ResolvePlayer(ctx context.Context, fullName string) (models.PlayerIdentity, error) {
	f.mu.Lock()
	f.resolveCalls++
	f.mu.Unlock()
	if f.ResolvePlayerFunc != nil {
		return f.ResolvePlayerFunc(ctx, fullName)
	}
	return models.PlayerIdentity{ID: 1, Name: fullName}, nil
}

func (f *fakeSource) FetchLog(ctx context.Context, playerID int, season string) ([]models.GameLogRow, error) {
	f.mu.Lock()
	f.fetchLogCalls++
	f.mu.Unlock()
	if f.FetchLogFunc != nil {
		return f.FetchLogFunc(ctx, playerID, season)
	}
	return []models.GameLogRow{{Season: season, Points: 10}}, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchLogCalls
}

func (f *fakeSource) resolutions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolveCalls
}
