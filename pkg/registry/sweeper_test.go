package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkt.systems/pslog"

	"github.com/vigor8or/lockserver/pkg/clock"
	"github.com/vigor8or/lockserver/pkg/types"
)

// TestSweeperEvictsExpired tests the crash-recovery path: a holder that
// never renews is reclaimed within one sweep period of expiry
func TestSweeperEvictsExpired(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	reg := New(clk, 1*time.Second)

	sweeper := NewSweeper(reg, 500*time.Millisecond, pslog.NoopLogger())
	sweeper.Start()
	defer sweeper.Stop()

	_, err := reg.Acquire("jobs", types.KindExclusive)
	require.NoError(t, err)

	// wait for the sweep loop to arm its timer, then push past the lease
	require.Eventually(t, func() bool { return clk.Pending() > 0 },
		time.Second, time.Millisecond)
	clk.Advance(1500 * time.Millisecond)

	require.Eventually(t, func() bool {
		return reg.Stats().Holders == 0
	}, 2*time.Second, 10*time.Millisecond, "sweeper should evict the lapsed holder")

	_, err = reg.Acquire("jobs", types.KindExclusive)
	assert.NoError(t, err)
}

// TestSweeperKeepsRenewedHolder tests that renewal and sweeping never race a
// fresh holder away
func TestSweeperKeepsRenewedHolder(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	reg := New(clk, 1*time.Second)

	sweeper := NewSweeper(reg, 500*time.Millisecond, pslog.NoopLogger())
	sweeper.Start()
	defer sweeper.Stop()

	holder, err := reg.Acquire("jobs", types.KindShared)
	require.NoError(t, err)

	// renew before each lapse across several sweep periods
	for i := 0; i < 4; i++ {
		clk.Advance(600 * time.Millisecond)
		_, err = reg.Renew("jobs", holder.Token)
		require.NoError(t, err, "holder must survive while renewing")
	}

	assert.Equal(t, 1, reg.Stats().Holders)
}

// TestSweeperPeriodDefaults tests the derived sweep cadence
func TestSweeperPeriodDefaults(t *testing.T) {
	reg := New(clock.Real{}, 10*time.Second)
	assert.Equal(t, 5*time.Second, NewSweeper(reg, 0, nil).Period())

	// short intervals are floored so the loop cannot spin
	fast := New(clock.Real{}, 50*time.Millisecond)
	assert.Equal(t, MinSweepPeriod, NewSweeper(fast, 0, nil).Period())

	// explicit override wins
	assert.Equal(t, 2*time.Second, NewSweeper(reg, 2*time.Second, nil).Period())
}

// TestSweeperStop tests that Stop terminates the loop
func TestSweeperStop(t *testing.T) {
	reg := New(clock.Real{}, time.Second)
	sweeper := NewSweeper(reg, MinSweepPeriod, nil)
	sweeper.Start()

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

// TestSweeperRealClock exercises the whole reclaim path with wall time
func TestSweeperRealClock(t *testing.T) {
	reg := New(clock.Real{}, 200*time.Millisecond)
	sweeper := NewSweeper(reg, 0, pslog.NoopLogger())
	sweeper.Start()
	defer sweeper.Stop()

	_, err := reg.Acquire("jobs", types.KindExclusive)
	require.NoError(t, err)

	// conflict while the lease is live
	_, err = reg.Acquire("jobs", types.KindExclusive)
	require.ErrorIs(t, err, types.ErrConflict)

	require.Eventually(t, func() bool {
		_, err := reg.Acquire("jobs", types.KindExclusive)
		return err == nil
	}, 2*time.Second, 25*time.Millisecond, "expired lock should become acquirable")
}
