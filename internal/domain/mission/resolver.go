package mission

import (
	"context"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
)

// Outcome is what a resolver decided at arrival.
type Outcome struct {
	// Ships survive and fly home. An empty manifest destroys the mission.
	Ships flight.Manifest
	// Resources are still aboard and return with the fleet.
	Resources economy.Resources
	Reports   []report.Report
	// Lost marks ships destroyed rather than handed over; the owner gets a
	// fleet_lost notice when the mission ends with no survivors.
	Lost     bool
	Detected bool
	// Credits are handed to other planets. They commit together with the
	// mission transition, never before it.
	Credits []Credit
}

// Credit is cargo or ships delivered to a player's planet.
type Credit struct {
	PlayerID  string
	Resources economy.Resources
	Ships     flight.Manifest
}

// Resolver settles a mission that reached its target. owner is the
// sender's planet reconciled to now and must not be modified.
type Resolver interface {
	Resolve(ctx context.Context, m Mission, owner *planet.State) (Outcome, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, m Mission, owner *planet.State) (Outcome, error)

func (f ResolverFunc) Resolve(ctx context.Context, m Mission, owner *planet.State) (Outcome, error) {
	return f(ctx, m, owner)
}

// Registry maps mission kinds to resolvers.
type Registry struct {
	resolvers map[Kind]Resolver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[Kind]Resolver)}
}

// Register installs r for kind, replacing any previous resolver.
func (r *Registry) Register(kind Kind, resolver Resolver) {
	r.resolvers[kind] = resolver
}

// Get returns the resolver for kind.
func (r *Registry) Get(kind Kind) (Resolver, bool) {
	resolver, ok := r.resolvers[kind]
	return resolver, ok
}

// DefaultRegistry registers the spy, transport, donation and colonize resolvers.
func DefaultRegistry(planets Planets, roll func() float64) *Registry {
	reg := NewRegistry()
	reg.Register(KindSpy, &SpyResolver{Planets: planets, Roll: roll})
	reg.Register(KindTransport, &DeliveryResolver{Planets: planets})
	reg.Register(KindDonation, &DeliveryResolver{Planets: planets, Donate: true})
	reg.Register(KindColonize, &ColonizeResolver{Planets: planets})
	return reg
}
