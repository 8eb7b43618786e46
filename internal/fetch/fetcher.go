// Package fetch retrieves player game logs from the upstream source with
// bounded retry, TTL caching, and a worker pool for roster-wide fan-out.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hoopsight/points-api/internal/cache"
	"github.com/hoopsight/points-api/internal/models"
	"github.com/hoopsight/points-api/internal/nba"
)

// ErrNoData means every requested season failed for a player. The caller
// treats the player as having no usable data and moves on.
var ErrNoData = errors.New("fetch: no usable data")

// Prometheus metrics
var (
	fetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointsapi_fetch_attempts_total",
		Help: "Total upstream game log fetch attempts",
	})

	fetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointsapi_fetch_retries_total",
		Help: "Total retried fetch attempts after transient failures",
	})

	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointsapi_fetch_failures_total",
		Help: "Total season fetches that exhausted retries or failed permanently",
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointsapi_cache_hits_total",
		Help: "Total fetch cache hits (season logs and player identities)",
	})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pointsapi_fetch_duration_seconds",
		Help:    "Duration of upstream season log fetches",
		Buckets: prometheus.DefBuckets,
	})
)

// Config bounds the fetcher's retry and cache behavior.
type Config struct {
	Seasons      []string
	CacheTTL     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Fetcher retrieves per-season game logs. A season result is cached for
// CacheTTL since the upstream mutates at most daily during a season.
type Fetcher struct {
	source nba.StatsSource
	cache  cache.Store
	cfg    Config
	logger *zap.SugaredLogger

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(source nba.StatsSource, store cache.Store, cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if len(cfg.Seasons) == 0 {
		cfg.Seasons = []string{"2024-25", "2023-24"}
	}
	return &Fetcher{
		source: source,
		cache:  store,
		cfg:    cfg,
		logger: logger.Sugar(),
		sleep:  sleepCtx,
	}
}

// Seasons returns the configured season list, in request order.
func (f *Fetcher) Seasons() []string {
	return f.cfg.Seasons
}

// FetchSeasonLog returns one season's game log for a player, serving from
// cache within the TTL window. Transient upstream failures are retried up
// to MaxRetries with a fixed backoff; permanent failures are not retried.
func (f *Fetcher) FetchSeasonLog(ctx context.Context, playerID int, season string) ([]models.GameLogRow, error) {
	key := fmt.Sprintf("gamelog:%d:%s", playerID, season)

	if data, err := f.cache.Get(ctx, key); err == nil {
		var rows []models.GameLogRow
		if err := json.Unmarshal(data, &rows); err == nil {
			cacheHits.Inc()
			return rows, nil
		}
		f.logger.Warnw("Discarding corrupt cache entry", "key", key)
	}

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		fetchAttempts.Inc()
		start := time.Now()
		rows, err := f.source.FetchLog(ctx, playerID, season)
		fetchDuration.Observe(time.Since(start).Seconds())

		if err == nil {
			if data, merr := json.Marshal(rows); merr == nil {
				if cerr := f.cache.Set(ctx, key, data, f.cfg.CacheTTL); cerr != nil {
					f.logger.Warnw("Failed to cache season log", "key", key, "error", cerr)
				}
			}
			return rows, nil
		}

		if !nba.IsTransient(err) {
			fetchFailures.Inc()
			return nil, fmt.Errorf("season %s: %w", season, err)
		}

		lastErr = err
		if attempt < f.cfg.MaxRetries {
			fetchRetries.Inc()
			f.logger.Warnw("Transient fetch failure, retrying",
				"player_id", playerID,
				"season", season,
				"attempt", attempt,
				"error", err,
			)
			if serr := f.sleep(ctx, f.cfg.RetryBackoff); serr != nil {
				return nil, serr
			}
		}
	}

	fetchFailures.Inc()
	return nil, fmt.Errorf("season %s after %d attempts: %w", season, f.cfg.MaxRetries, lastErr)
}

// FetchPlayerData resolves a player by name and concatenates the logs of
// every configured season that could be fetched, in requested season
// order. Season failures are isolated; the player fails only when all
// seasons do. An unresolvable name surfaces as nba.ErrNotFound.
func (f *Fetcher) FetchPlayerData(ctx context.Context, playerName string) ([]models.GameLogRow, error) {
	identity, err := f.resolvePlayer(ctx, playerName)
	if err != nil {
		return nil, err
	}

	// Seasons are fetched concurrently but stitched back together in
	// request order. A failed season never cancels its siblings.
	perSeason := make([][]models.GameLogRow, len(f.cfg.Seasons))
	g, gctx := errgroup.WithContext(ctx)
	for i, season := range f.cfg.Seasons {
		i, season := i, season
		g.Go(func() error {
			rows, err := f.FetchSeasonLog(gctx, identity.ID, season)
			if err != nil {
				f.logger.Warnw("Season fetch failed",
					"player", playerName,
					"season", season,
					"error", err,
				)
				return nil
			}
			perSeason[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []models.GameLogRow
	for _, rows := range perSeason {
		combined = append(combined, rows...)
	}
	if len(combined) == 0 {
		return nil, fmt.Errorf("player %s: %w", playerName, ErrNoData)
	}
	return combined, nil
}

// resolvePlayer caches the name-to-id mapping under the same TTL as season
// logs. Resolution walks the full-league player catalog upstream, so an
// uncached roster analysis would repeat that download once per worker.
func (f *Fetcher) resolvePlayer(ctx context.Context, playerName string) (models.PlayerIdentity, error) {
	key := "player:" + strings.ToLower(playerName)

	if data, err := f.cache.Get(ctx, key); err == nil {
		var identity models.PlayerIdentity
		if err := json.Unmarshal(data, &identity); err == nil {
			cacheHits.Inc()
			return identity, nil
		}
		f.logger.Warnw("Discarding corrupt cache entry", "key", key)
	}

	identity, err := f.source.ResolvePlayer(ctx, playerName)
	if err != nil {
		return models.PlayerIdentity{}, err
	}

	if data, merr := json.Marshal(identity); merr == nil {
		if cerr := f.cache.Set(ctx, key, data, f.cfg.CacheTTL); cerr != nil {
			f.logger.Warnw("Failed to cache player identity", "key", key, "error", cerr)
		}
	}
	return identity, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
