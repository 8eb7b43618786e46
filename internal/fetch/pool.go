package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/models"
	"github.com/hoopsight/points-api/internal/nba"
)

var (
	rosterFetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pointsapi_roster_fetches_in_flight",
		Help: "Player fetches currently running in the roster pool",
	})

	playersSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointsapi_players_skipped_total",
		Help: "Roster players skipped due to resolution or fetch failure",
	})
)

// Pool fans FetchPlayerData out across a roster on a fixed number of
// workers. One player's failure never aborts the batch; it is reported
// as a warning and excluded from the result.
type Pool struct {
	fetcher *Fetcher
	size    int
	logger  *zap.SugaredLogger
}

func NewPool(fetcher *Fetcher, size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 10
	}
	return &Pool{
		fetcher: fetcher,
		size:    size,
		logger:  logger.Sugar(),
	}
}

type playerResult struct {
	player string
	rows   []models.GameLogRow
	err    error
}

// FetchAllPlayers fetches game logs for every roster member. Results are
// collected in completion order; the returned warnings carry one entry
// per excluded player. Each worker writes only its own result, so the
// output map is assembled single-threaded on the collector side.
func (p *Pool) FetchAllPlayers(ctx context.Context, roster []string) (map[string][]models.GameLogRow, []string) {
	jobs := make(chan string)
	results := make(chan playerResult)

	var wg sync.WaitGroup
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for player := range jobs {
				rosterFetchesInFlight.Inc()
				rows, err := p.fetcher.FetchPlayerData(ctx, player)
				rosterFetchesInFlight.Dec()
				results <- playerResult{player: player, rows: rows, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, player := range roster {
			select {
			case jobs <- player:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	data := make(map[string][]models.GameLogRow, len(roster))
	var warnings []string
	for res := range results {
		switch {
		case res.err != nil:
			playersSkipped.Inc()
			warning := fmt.Sprintf("no data available for player: %s", res.player)
			if errors.Is(res.err, nba.ErrNotFound) {
				warning = fmt.Sprintf("player not found: %s", res.player)
			}
			p.logger.Warnw("Skipping roster player",
				"player", res.player,
				"error", res.err,
			)
			warnings = append(warnings, warning)
		case len(res.rows) == 0:
			playersSkipped.Inc()
			warnings = append(warnings, fmt.Sprintf("no data available for player: %s", res.player))
		default:
			data[res.player] = res.rows
		}
	}
	return data, warnings
}
