package mission

import (
	"time"

	"github.com/joaodperes/stardust/internal/domain/flight"
)

const (
	// DefaultMaxSlots caps concurrent missions regardless of command center level.
	DefaultMaxSlots = 10
	// DefaultResolvingLease is how long a mission may sit in RESOLVING before
	// another pass sends it home.
	DefaultResolvingLease = 2 * time.Minute
)

// Options configures a Service.
type Options struct {
	Catalog        flight.Catalog
	MaxSlots       int
	ResolvingLease time.Duration
	Now            func() time.Time
	// Registry overrides the default resolvers.
	Registry *Registry
	Journal  Journal
	// Roll returns a uniform value in [0, 1) for spy detection. Nil uses
	// the goroutine-safe math/rand/v2 source.
	Roll func() float64
}
