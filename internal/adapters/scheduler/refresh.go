package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresh runs job on a cron schedule (standard 5-field or @every/@hourly
// descriptors). Each run gets its own deadline. The caller owns Start/Stop.
func Refresh(schedule string, job func(ctx context.Context) error, timeout time.Duration) (*cron.Cron, error) {
	if timeout <= 0 {
		timeout = time.Minute
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		if err := job(ctx); err != nil {
			log.Warn().Err(err).Str("schedule", schedule).Msg("scheduled dataset refresh failed")
			return
		}
		log.Info().Str("schedule", schedule).Dur("took", time.Since(start)).Msg("scheduled dataset refresh ok")
	})
	if err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", schedule, err)
	}
	return c, nil
}
