// Package engine assembles the domain services over one store.
package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/joaodperes/stardust/internal/domain/allocation"
	"github.com/joaodperes/stardust/internal/domain/mission"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
	"github.com/joaodperes/stardust/internal/journal"
	"github.com/joaodperes/stardust/internal/mcp"
	"github.com/joaodperes/stardust/internal/repository"
	"github.com/joaodperes/stardust/internal/ticker"
	"github.com/joaodperes/stardust/internal/tuning"
)

// Options configures New. Zero values fall back to defaults.
type Options struct {
	Tuning tuning.Tuning
	// Journal receives mission lifecycle events when set.
	Journal *journal.Writer
	Now     func() time.Time
	Roll    func() float64
}

// Engine holds the wired services.
type Engine struct {
	Store     repository.Store
	Allocator *allocation.Allocator
	Planets   *planet.Service
	Reports   *report.Service
	Missions  *mission.Service

	logger *slog.Logger
}

// New wires allocator, planet, report and mission services over store.
func New(store repository.Store, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Tuning.Ships == nil {
		opts.Tuning = tuning.Defaults()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	alloc := allocation.NewAllocator(store, logger.With("component", "allocator"),
		allocation.WithClock(opts.Now))
	planets := planet.NewService(store, alloc, logger.With("component", "planet"),
		planet.WithModel(opts.Tuning.Model()),
		planet.WithStarter(opts.Tuning.Starter),
		planet.WithClock(opts.Now),
	)
	reports := report.NewService(store, logger.With("component", "report"), opts.Now)

	missionOpts := mission.Options{
		Catalog:        opts.Tuning.Ships,
		MaxSlots:       opts.Tuning.Missions.MaxSlots,
		ResolvingLease: opts.Tuning.Missions.ResolvingLease,
		Now:            opts.Now,
		Roll:           opts.Roll,
	}
	if opts.Journal != nil {
		missionOpts.Journal = opts.Journal
	}
	missions := mission.NewService(store, planets, reports, logger.With("component", "mission"), missionOpts)

	return &Engine{
		Store:     store,
		Allocator: alloc,
		Planets:   planets,
		Reports:   reports,
		Missions:  missions,
		logger:    logger,
	}
}

// Services exposes the engine to the API layer.
func (e *Engine) Services() mcp.Services {
	return mcp.Services{
		Planets:  e.Planets,
		Missions: e.Missions,
		Reports:  e.Reports,
	}
}

// Driver builds the tick driver that processes every player's missions.
func (e *Engine) Driver(cfg ticker.Config) *ticker.Driver {
	return ticker.NewDriver(e.Planets, e.Missions, e.logger.With("component", "ticker"), cfg)
}
