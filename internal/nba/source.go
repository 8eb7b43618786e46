// Package nba talks to the upstream stats API. Everything the pipeline
// needs from the network goes through the StatsSource interface so the
// rest of the service can be tested against a fake.
package nba

import (
	"context"
	"errors"
	"net"

	"github.com/hoopsight/points-api/internal/models"
)

// ErrNotFound means identity resolution produced zero matches. It is
// non-fatal: callers skip the entity rather than failing the batch.
var ErrNotFound = errors.New("nba: not found")

// StatsSource is the narrow capability set the pipeline consumes.
type StatsSource interface {
	ResolveTeam(ctx context.Context, abbreviation string) (models.TeamIdentity, error)
	ResolveRoster(ctx context.Context, teamID int, season string) ([]string, error)
	ResolvePlayer(ctx context.Context, fullName string) (models.PlayerIdentity, error)
	FetchLog(ctx context.Context, playerID int, season string) ([]models.GameLogRow, error)
}

// TransientError marks a fetch failure worth retrying (timeout, dropped
// connection, upstream overload). Permanent failures such as a malformed
// response are returned bare.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
