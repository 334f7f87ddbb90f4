package managers

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// CleanupInterval is the default cadence of the background token sweep.
const CleanupInterval = time.Hour

// TokenCleanup periodically sweeps expired session tokens out of the store.
// It is the only process-wide background state: started once at boot and
// stopped cleanly at shutdown.
type TokenCleanup struct {
	tokenMgr TokenMgr
	interval time.Duration

	stopOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

// NewTokenCleanup creates a sweeper over the given token manager.
func NewTokenCleanup(tokenMgr TokenMgr, interval time.Duration) *TokenCleanup {
	if interval <= 0 {
		interval = CleanupInterval
	}
	return &TokenCleanup{
		tokenMgr: tokenMgr,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (tc *TokenCleanup) Start() {
	log.Info("Starting session token cleanup, interval ", tc.interval)

	go func() {
		defer close(tc.stopped)

		ticker := time.NewTicker(tc.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				tc.sweep()
			case <-tc.done:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits until it has exited.
// Stop is safe to call more than once.
func (tc *TokenCleanup) Stop() {
	tc.stopOnce.Do(func() {
		close(tc.done)
	})
	<-tc.stopped
	log.Info("Stopped session token cleanup")
}

func (tc *TokenCleanup) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := tc.tokenMgr.CleanupExpired(ctx)
	if err != nil {
		log.Error("Error sweeping expired session tokens: ", err)
		return
	}

	if deleted > 0 {
		log.Info("Swept ", deleted, " expired session tokens")
	}
}
