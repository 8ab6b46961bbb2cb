// Package economy holds the resource accrual model: production rates,
// energy balance and storage capacity as pure functions of building levels.
package economy

import "math"

// Resource names one of the stockpiled resources.
type Resource string

const (
	Metal     Resource = "metal"
	Crystal   Resource = "crystal"
	Deuterium Resource = "deuterium"
)

// Resources is an amount of each resource.
type Resources struct {
	Metal     float64 `json:"metal"`
	Crystal   float64 `json:"crystal"`
	Deuterium float64 `json:"deuterium"`
}

// Get returns the amount of r.
func (r Resources) Get(res Resource) float64 {
	switch res {
	case Metal:
		return r.Metal
	case Crystal:
		return r.Crystal
	case Deuterium:
		return r.Deuterium
	}
	return 0
}

// With returns a copy of r with res set to v.
func (r Resources) With(res Resource, v float64) Resources {
	switch res {
	case Metal:
		r.Metal = v
	case Crystal:
		r.Crystal = v
	case Deuterium:
		r.Deuterium = v
	}
	return r
}

func (r Resources) Add(o Resources) Resources {
	return Resources{Metal: r.Metal + o.Metal, Crystal: r.Crystal + o.Crystal, Deuterium: r.Deuterium + o.Deuterium}
}

func (r Resources) Sub(o Resources) Resources {
	return Resources{Metal: r.Metal - o.Metal, Crystal: r.Crystal - o.Crystal, Deuterium: r.Deuterium - o.Deuterium}
}

func (r Resources) Scale(f float64) Resources {
	return Resources{Metal: r.Metal * f, Crystal: r.Crystal * f, Deuterium: r.Deuterium * f}
}

// Mul multiplies component-wise.
func (r Resources) Mul(o Resources) Resources {
	return Resources{Metal: r.Metal * o.Metal, Crystal: r.Crystal * o.Crystal, Deuterium: r.Deuterium * o.Deuterium}
}

// Covers reports whether r holds at least o of every resource.
func (r Resources) Covers(o Resources) bool {
	return r.Metal >= o.Metal && r.Crystal >= o.Crystal && r.Deuterium >= o.Deuterium
}

// Total is the sum of all resources.
func (r Resources) Total() float64 {
	return r.Metal + r.Crystal + r.Deuterium
}

func (r Resources) IsZero() bool {
	return r.Metal == 0 && r.Crystal == 0 && r.Deuterium == 0
}

// Negative reports whether any component is below zero.
func (r Resources) Negative() bool {
	return r.Metal < 0 || r.Crystal < 0 || r.Deuterium < 0
}

// Floor rounds every component down.
func (r Resources) Floor() Resources {
	return Resources{Metal: math.Floor(r.Metal), Crystal: math.Floor(r.Crystal), Deuterium: math.Floor(r.Deuterium)}
}

// BuildingKind names a planet building.
type BuildingKind string

const (
	MetalMine            BuildingKind = "metal_mine"
	CrystalMine          BuildingKind = "crystal_mine"
	DeuteriumSynthesizer BuildingKind = "deuterium_synthesizer"
	SolarPlant           BuildingKind = "solar_plant"
	MetalStorage         BuildingKind = "metal_storage"
	CrystalStorage       BuildingKind = "crystal_storage"
	DeuteriumTank        BuildingKind = "deuterium_tank"
	CommandCenter        BuildingKind = "command_center"
	Shipyard             BuildingKind = "shipyard"
	ResearchLab          BuildingKind = "research_lab"
)

// Levels maps a building to its level. Missing buildings are level 0.
type Levels map[BuildingKind]int

// Growth selects how a producer's rate scales with level.
type Growth string

const (
	Linear      Growth = "linear"
	Compounding Growth = "compounding"
)

// Producer describes a resource-producing building.
type Producer struct {
	Resource   Resource `yaml:"resource" json:"resource"`
	Growth     Growth   `yaml:"growth" json:"growth"`
	Base       float64  `yaml:"base" json:"base"`
	Scaling    float64  `yaml:"scaling" json:"scaling"`
	Efficiency float64  `yaml:"efficiency" json:"efficiency"`
	EnergyUse  float64  `yaml:"energy_use" json:"energy_use"`

	// EnergyScaling grows demand per level. Zero means DefaultEnergyScaling.
	EnergyScaling float64 `yaml:"energy_scaling" json:"energy_scaling"`
}

// PowerPlant describes an energy-producing building.
type PowerPlant struct {
	Base    float64 `yaml:"base" json:"base"`
	Scaling float64 `yaml:"scaling" json:"scaling"`
}

// Archetype is a planet type with per-resource production multipliers.
type Archetype string

const (
	Balanced    Archetype = "balanced"
	MetalRich   Archetype = "metal_rich"
	CrystalRich Archetype = "crystal_rich"
	GasGiant    Archetype = "gas_giant"
)

// Multiplier returns the production multiplier of the archetype.
// Unknown archetypes behave as balanced.
func (a Archetype) Multiplier() Resources {
	switch a {
	case MetalRich:
		return Resources{Metal: 1.25, Crystal: 0.9, Deuterium: 0.9}
	case CrystalRich:
		return Resources{Metal: 0.9, Crystal: 1.25, Deuterium: 0.9}
	case GasGiant:
		return Resources{Metal: 0.85, Crystal: 0.85, Deuterium: 1.4}
	default:
		return Resources{Metal: 1, Crystal: 1, Deuterium: 1}
	}
}

// Archetypes lists every known archetype.
func Archetypes() []Archetype {
	return []Archetype{Balanced, MetalRich, CrystalRich, GasGiant}
}
