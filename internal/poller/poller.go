// Package poller requests status snapshots on a fixed interval.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"eiractl/internal/models"
)

// FetchFunc retrieves one snapshot.
type FetchFunc func(ctx context.Context) (*models.StatusSnapshot, error)

// RenderFunc receives every successfully fetched snapshot. It may be called
// from several goroutines, in any order relative to request order.
type RenderFunc func(snapshot *models.StatusSnapshot)

type Poller struct {
	interval time.Duration
	fetch    FetchFunc
	logger   *slog.Logger
}

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = 3 * time.Second

func New(interval time.Duration, fetch FetchFunc, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		logger:   logger,
	}
}

// Run polls once immediately and then on every tick until ctx is done. Each
// poll runs in its own goroutine and never waits for the previous one.
// Failed polls are dropped. Run returns after in-flight polls have finished.
func (p *Poller) Run(ctx context.Context, render RenderFunc) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	poll := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot, err := p.fetch(ctx)
			if err != nil {
				p.logger.Debug("status poll failed", "error", err)
				return
			}
			if ctx.Err() != nil {
				return
			}
			render(snapshot)
		}()
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
