package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/ports"
)

// Sweeper deletes sessions whose last refresh is older than the refresh
// token lifetime. Their refresh tokens can no longer validate, so the
// rows are dead weight that would otherwise accumulate forever.
type Sweeper struct {
	sessions   ports.SessionRepository
	refreshTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

func NewSweeper(sessions ports.SessionRepository, refreshTTL time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		sessions:   sessions,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Sweep removes expired sessions and reports how many went.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.refreshTTL)
	removed, err := s.sessions.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info().
			Int64("removed", removed).
			Time("cutoff", cutoff).
			Msg("purged expired sessions")
	}
	return removed, nil
}
