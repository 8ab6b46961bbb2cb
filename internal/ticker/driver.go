// Package ticker drives mission processing for every player on a fixed
// interval.
package ticker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/joaodperes/stardust/internal/domain/mission"
)

const (
	DefaultInterval = time.Second
	DefaultWorkers  = 4
)

// Roster lists the players to process.
type Roster interface {
	ListPlayers(ctx context.Context) ([]string, error)
}

// Processor advances one player's missions.
type Processor interface {
	ProcessActiveMissions(ctx context.Context, playerID string) (mission.Summary, error)
}

// Config controls the driver cadence and fan-out.
type Config struct {
	Interval time.Duration
	Workers  int
}

// Driver runs ProcessActiveMissions for every player each tick. Missions of
// one player are processed sequentially; players fan out up to Workers.
type Driver struct {
	roster    Roster
	processor Processor
	interval  time.Duration
	sem       *semaphore.Weighted
	logger    *slog.Logger
}

// NewDriver creates a driver.
func NewDriver(roster Roster, processor Processor, logger *slog.Logger, cfg Config) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Driver{
		roster:    roster,
		processor: processor,
		interval:  cfg.Interval,
		sem:       semaphore.NewWeighted(int64(cfg.Workers)),
		logger:    logger,
	}
}

// Run ticks until ctx is cancelled. A paused or slow driver catches up on
// the next tick since missions carry absolute timestamps.
func (d *Driver) Run(ctx context.Context) error {
	t := time.NewTicker(d.interval)
	defer t.Stop()

	d.logger.Info("tick driver started", "interval", d.interval)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("tick driver stopped")
			return nil
		case <-t.C:
			summary, err := d.Tick(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				d.logger.Error("tick failed", "error", err)
				continue
			}
			if summary != (mission.Summary{}) {
				d.logger.Info("tick processed",
					"arrived", summary.Arrived, "returned", summary.Returned,
					"destroyed", summary.Destroyed, "failed", summary.Failed)
			}
		}
	}
}

// Tick processes every player once and returns the combined summary. A
// player whose pass fails is logged and counted as failed.
func (d *Driver) Tick(ctx context.Context) (mission.Summary, error) {
	var total mission.Summary

	players, err := d.roster.ListPlayers(ctx)
	if err != nil {
		return total, fmt.Errorf("listing players: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, playerID := range players {
		if err := d.sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer d.sem.Release(1)

			summary, err := d.processor.ProcessActiveMissions(gctx, playerID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				d.logger.Error("player processing failed", "player", playerID, "error", err)
				summary.Failed++
			}

			mu.Lock()
			total.Add(summary)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return total, err
	}
	if err := ctx.Err(); err != nil {
		return total, err
	}
	return total, nil
}
