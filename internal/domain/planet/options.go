package planet

import (
	"math/rand/v2"
	"time"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
)

// Starter is the initial layout of a newly assigned home planet.
type Starter struct {
	Resources economy.Resources    `yaml:"resources" json:"resources"`
	Buildings economy.Levels       `yaml:"buildings" json:"buildings"`
	Research  map[ResearchKind]int `yaml:"research" json:"research"`
	Fleet     flight.Manifest      `yaml:"fleet" json:"fleet"`
}

// DefaultStarter returns the standard starting planet.
func DefaultStarter() Starter {
	return Starter{
		Resources: economy.Resources{Metal: 500, Crystal: 500, Deuterium: 200},
		Buildings: economy.Levels{
			economy.MetalMine:            1,
			economy.CrystalMine:          1,
			economy.DeuteriumSynthesizer: 1,
			economy.SolarPlant:           2,
		},
		Research: map[ResearchKind]int{},
		Fleet:    flight.Manifest{flight.SmallCargo: 1, flight.SpyProbe: 1},
	}
}

// AssignRequest describes a new home planet.
type AssignRequest struct {
	IsBot     bool
	Archetype economy.Archetype
	// Ships are granted on top of the starter fleet.
	Ships flight.Manifest
}

// Option configures a Service.
type Option func(*Service)

// WithModel replaces the default accrual model.
func WithModel(model economy.Model) Option {
	return func(s *Service) { s.model = model }
}

// WithStarter replaces the default starting planet.
func WithStarter(starter Starter) Option {
	return func(s *Service) { s.starter = starter }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand sets the random source used to pick archetypes.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}
