package punish

import (
	"context"
	"time"

	"github.com/kasuganosora/modguard/scheduler"
	"go.uber.org/zap"
)

// RegisterTasks installs the background sweeps on the scheduler:
//   - the expiry reconciler, which evicts cache entries whose derived
//     validity has lapsed (memory hygiene only — every read re-validates
//     on the hit path, so nothing is correct because this ran);
//   - the points decay, which reduces every positive player score.
//
// Neither task ever mutates the punishments table.
func (s *Service) RegisterTasks(sched *scheduler.Scheduler, sweepEvery, decayEvery time.Duration, decayAmount float64) {
	if sweepEvery > 0 {
		sched.AddTicker("punishment-cache-sweep", sweepEvery, func() {
			evicted := s.cache.Cleanup(s.now())
			if evicted > 0 {
				s.logger.Debug("cache sweep evicted entries", zap.Int("count", evicted))
			}
		})
	}
	if decayEvery > 0 && decayAmount > 0 {
		decay := func() {
			n, err := s.store.DecayPoints(context.Background(), decayAmount)
			if err != nil {
				s.logger.Error("points decay failed", zap.Error(err))
				return
			}
			if n > 0 {
				s.logger.Debug("points decayed", zap.Int64("players", n))
			}
		}
		sched.AddTicker("points-decay", decayEvery, decay)
		// The ticker first fires a full interval after startup, so a
		// process restarted more often than it decays would never decay at
		// all. The one-shot halfway into the first interval covers that.
		sched.AddDelay("points-decay-catchup", decayEvery/2, decay)
	}
}
