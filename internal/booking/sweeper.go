package booking

import (
    "context"
    "log"
    "sync"
    "time"
)

// Default sweeper cadence and how long terminal hold records are kept
// around for idempotent duplicate answers before being pruned.
const (
    DefaultSweepInterval = 30 * time.Second
    DefaultHoldRetention = time.Hour
)

// Sweeper periodically reclaims seats whose holds have timed out.  Each
// expired hold is released through the same identifier-claimed path as
// an explicit release, so a hold promoted or released just before the
// tick is observed as terminal and skipped, never double-freed.  The
// sweeper also prunes terminal registry entries past the retention
// window.
type Sweeper struct {
    holds     *HoldManager
    interval  time.Duration
    retention time.Duration

    cancel context.CancelFunc
    wg     sync.WaitGroup
}

// NewSweeper builds a sweeper over the given hold manager.  Non-positive
// durations fall back to the defaults.
func NewSweeper(holds *HoldManager, interval, retention time.Duration) *Sweeper {
    if interval <= 0 {
        interval = DefaultSweepInterval
    }
    if retention <= 0 {
        retention = DefaultHoldRetention
    }
    return &Sweeper{holds: holds, interval: interval, retention: retention}
}

// Start launches the background sweep loop.  It returns immediately; use
// Stop to cancel the loop and wait for it to exit.
func (s *Sweeper) Start(ctx context.Context) {
    ctx, s.cancel = context.WithCancel(ctx)
    s.wg.Add(1)
    go func() {
        defer s.wg.Done()
        ticker := time.NewTicker(s.interval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                s.SweepOnce(ctx)
            }
        }
    }()
}

// Stop cancels the sweep loop and blocks until it has exited.
func (s *Sweeper) Stop() {
    if s.cancel != nil {
        s.cancel()
    }
    s.wg.Wait()
}

// SweepOnce performs a single sweep pass: release every expired hold,
// then prune terminal records older than the retention window.  It
// returns the number of holds released.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
    released := s.holds.SweepExpired(ctx)
    if released > 0 {
        log.Printf("sweeper: released %d expired hold(s)", released)
    }
    s.holds.Prune(s.holds.now().Add(-s.retention))
    return released
}
