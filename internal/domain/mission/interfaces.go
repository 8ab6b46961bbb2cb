package mission

import (
	"context"
	"time"

	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
	"github.com/joaodperes/stardust/internal/journal"
	"github.com/joaodperes/stardust/internal/repository"
)

// Planets is the planet access missions need.
type Planets interface {
	Get(ctx context.Context, playerID string) (*planet.State, error)
	Load(ctx context.Context, g planet.Getter, playerID string, now time.Time) (*planet.State, error)
	Occupant(ctx context.Context, c galaxy.Coordinate) (string, bool, error)
	FindByCoordinate(ctx context.Context, c galaxy.Coordinate) (*planet.State, bool, error)
	FoundColony(ctx context.Context, ownerID string, c galaxy.Coordinate) (bool, error)
}

// Reports stages inbox entries inside a store transaction.
type Reports interface {
	Stage(txn repository.Txn, r report.Report) (*report.Report, error)
}

// Journal records lifecycle events.
type Journal interface {
	Append(e journal.Event) error
}
