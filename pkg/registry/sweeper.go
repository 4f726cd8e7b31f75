package registry

import (
	"time"

	"pkt.systems/pslog"

	"github.com/vigor8or/lockserver/pkg/clock"
	"github.com/vigor8or/lockserver/pkg/metrics"
)

// MinSweepPeriod bounds how often the sweeper will run regardless of how
// short the configured lease interval is.
const MinSweepPeriod = 100 * time.Millisecond

// Sweeper reclaims lapsed holders on a fixed period. It is the sole
// authority on lease expiry: a holder past its lease still blocks acquires
// until the next pass evicts it, so reclaim lands within one period of
// expiry.
type Sweeper struct {
	reg    *Registry
	period time.Duration
	clock  clock.Clock
	logger pslog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeper builds a sweeper over reg. A non-positive period defaults to
// half the registry's lease interval, floored at MinSweepPeriod.
func NewSweeper(reg *Registry, period time.Duration, logger pslog.Logger) *Sweeper {
	if period <= 0 {
		period = reg.Interval() / 2
	}
	if period < MinSweepPeriod {
		period = MinSweepPeriod
	}
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Sweeper{
		reg:    reg,
		period: period,
		clock:  reg.clock,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Period returns the effective sweep period.
func (s *Sweeper) Period() time.Duration {
	return s.period
}

// Start launches the sweep loop in its own goroutine.
func (s *Sweeper) Start() {
	go s.run()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Sweeper) run() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.clock.After(s.period):
			s.sweep()
		}
	}
}

// sweep is best-effort: it never surfaces errors, a missed eviction is
// corrected on the next pass.
func (s *Sweeper) sweep() {
	evicted := s.reg.ExpireDue(s.clock.Now())
	stats := s.reg.Stats()
	metrics.HoldersActive.Set(float64(stats.Holders))
	metrics.LocksActive.Set(float64(stats.Locks))
	if evicted > 0 {
		metrics.ExpireTotal.Add(float64(evicted))
		s.logger.Info("sweeper.evicted", "holders", evicted, "locks_active", stats.Locks)
	}
}
