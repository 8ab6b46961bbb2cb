package economy

import (
	"math"
	"time"
)

const (
	// DefaultCatchUp bounds how much offline time a single reconciliation credits.
	DefaultCatchUp = 168 * time.Hour
	// DefaultLowPowerFactor throttles production while energy is negative.
	DefaultLowPowerFactor = 0.1
	// DefaultStorageBase is the capacity unit of a storage building.
	DefaultStorageBase = 5000
	// DefaultEnergyScaling is the per-level growth of a producer's energy demand.
	DefaultEnergyScaling = 1.1
)

// Model is the tunable accrual model.
type Model struct {
	Producers      map[BuildingKind]Producer
	PowerPlants    map[BuildingKind]PowerPlant
	Storage        map[Resource]BuildingKind
	StorageBase    float64
	LowPowerFactor float64
	CatchUp        time.Duration
}

// DefaultModel returns the standard production rules.
func DefaultModel() Model {
	return Model{
		Producers: map[BuildingKind]Producer{
			MetalMine:            {Resource: Metal, Growth: Compounding, Base: 30, Scaling: 1.1, Efficiency: 1, EnergyUse: 10, EnergyScaling: DefaultEnergyScaling},
			CrystalMine:          {Resource: Crystal, Growth: Compounding, Base: 20, Scaling: 1.1, Efficiency: 1, EnergyUse: 10, EnergyScaling: DefaultEnergyScaling},
			DeuteriumSynthesizer: {Resource: Deuterium, Growth: Linear, Base: 15, Scaling: 1.1, Efficiency: 1, EnergyUse: 20, EnergyScaling: DefaultEnergyScaling},
		},
		PowerPlants: map[BuildingKind]PowerPlant{
			SolarPlant: {Base: 20, Scaling: 1.1},
		},
		Storage: map[Resource]BuildingKind{
			Metal:     MetalStorage,
			Crystal:   CrystalStorage,
			Deuterium: DeuteriumTank,
		},
		StorageBase:    DefaultStorageBase,
		LowPowerFactor: DefaultLowPowerFactor,
		CatchUp:        DefaultCatchUp,
	}
}

// EnergyBalance is power produced minus power consumed. It may be negative.
func (m Model) EnergyBalance(levels Levels) float64 {
	var balance float64
	for kind, plant := range m.PowerPlants {
		level := levels[kind]
		if level <= 0 {
			continue
		}
		balance += plant.Base * float64(level) * math.Pow(plant.Scaling, float64(level))
	}
	for kind, p := range m.Producers {
		level := levels[kind]
		if level <= 0 || p.EnergyUse == 0 {
			continue
		}
		balance -= p.demand(level)
	}
	return balance
}

func (p Producer) demand(level int) float64 {
	scaling := p.EnergyScaling
	if scaling <= 0 {
		scaling = DefaultEnergyScaling
	}
	return p.EnergyUse * float64(level) * math.Pow(scaling, float64(level))
}

// HourlyRates returns production per hour. A negative energy balance
// throttles production; consumption is unaffected.
func (m Model) HourlyRates(levels Levels, energyBalance float64) Resources {
	power := 1.0
	if energyBalance < 0 {
		power = m.LowPowerFactor
	}

	var rates Resources
	for kind, p := range m.Producers {
		level := levels[kind]
		if level <= 0 {
			continue
		}
		rate := p.rate(level) * power
		rates = rates.With(p.Resource, rates.Get(p.Resource)+rate)
	}
	return rates
}

func (p Producer) rate(level int) float64 {
	switch p.Growth {
	case Linear:
		return p.Base * float64(level) * p.Efficiency
	default:
		return p.Base * float64(level) * math.Pow(p.Scaling, float64(level))
	}
}

// Accrue returns the production over elapsed. elapsed is clamped to
// [0, CatchUp], so the result is additive for windows under the cap.
func (m Model) Accrue(levels Levels, energyBalance float64, elapsed time.Duration) Resources {
	if elapsed <= 0 {
		return Resources{}
	}
	if m.CatchUp > 0 && elapsed > m.CatchUp {
		elapsed = m.CatchUp
	}
	return m.HourlyRates(levels, energyBalance).Scale(elapsed.Hours())
}

// Capacity is the storage limit granted by a storage building of the given level.
func (m Model) Capacity(level int) float64 {
	if level < 0 {
		level = 0
	}
	return m.StorageBase * math.Floor(2.5*math.Exp(20*float64(level)/33))
}

// Capacities returns the storage limit of each resource.
func (m Model) Capacities(levels Levels) Resources {
	var caps Resources
	for _, res := range []Resource{Metal, Crystal, Deuterium} {
		caps = caps.With(res, m.Capacity(levels[m.Storage[res]]))
	}
	return caps
}

// Reconcile credits production between lastTick and now and returns the new
// stock and tick. now before lastTick changes nothing, so repeated calls
// never double count. Production stops at capacity; stock already above
// capacity is kept.
func (m Model) Reconcile(stock Resources, levels Levels, mult Resources, lastTick, now time.Time) (Resources, time.Time) {
	if !now.After(lastTick) {
		return stock, lastTick
	}

	delta := m.Accrue(levels, m.EnergyBalance(levels), now.Sub(lastTick)).Mul(mult)
	caps := m.Capacities(levels)

	next := stock
	for _, res := range []Resource{Metal, Crystal, Deuterium} {
		next = next.With(res, clampProduced(stock.Get(res), delta.Get(res), caps.Get(res)))
	}
	return next, now
}

func clampProduced(current, delta, capacity float64) float64 {
	if current >= capacity {
		return current
	}
	return math.Min(current+delta, capacity)
}
