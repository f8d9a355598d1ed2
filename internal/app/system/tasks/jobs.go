package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/stratastudio/internal/app/engine/discover"
	"go.uber.org/zap"
)

// ThrottlePruneJob drops expired entries from the orphan-scan throttle
// registry so the bounded map stays small between bursts of requesters.
func ThrottlePruneJob(throttle *discover.Throttle, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "throttle_prune",
		Interval: interval,
		Run: func(ctx context.Context) error {
			removed := throttle.Prune()
			if removed > 0 {
				logger.Debug("pruned throttle registry",
					zap.Int("removed", removed),
					zap.Int("remaining", throttle.Len()),
				)
			}
			return nil
		},
	}
}
