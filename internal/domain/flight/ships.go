// Package flight computes distances, convoy speed, flight time and fuel for
// fleets moving between coordinates.
package flight

import (
	"sort"
)

// ShipKind names a ship type.
type ShipKind string

const (
	SmallCargo   ShipKind = "small_cargo"
	LargeCargo   ShipKind = "large_cargo"
	LightFighter ShipKind = "light_fighter"
	HeavyFighter ShipKind = "heavy_fighter"
	Cruiser      ShipKind = "cruiser"
	SpyProbe     ShipKind = "spy_probe"
	ColonyShip   ShipKind = "colony_ship"
)

// ShipClass groups ship kinds by role. Mission kinds restrict classes.
type ShipClass string

const (
	ClassCargo          ShipClass = "cargo"
	ClassCombat         ShipClass = "combat"
	ClassReconnaissance ShipClass = "reconnaissance"
	ClassColonizer      ShipClass = "colonizer"
)

// ShipSpec holds the flight characteristics of one ship kind.
// Speed is in distance units per second.
type ShipSpec struct {
	Class       ShipClass `yaml:"class" json:"class"`
	Speed       float64   `yaml:"speed" json:"speed"`
	Consumption float64   `yaml:"consumption" json:"consumption"`
	Cargo       float64   `yaml:"cargo" json:"cargo"`
}

// Catalog maps ship kinds to their specs.
type Catalog map[ShipKind]ShipSpec

// DefaultCatalog returns the standard ship table.
func DefaultCatalog() Catalog {
	return Catalog{
		SmallCargo:   {Class: ClassCargo, Speed: 10, Consumption: 10, Cargo: 5000},
		LargeCargo:   {Class: ClassCargo, Speed: 7.5, Consumption: 50, Cargo: 25000},
		LightFighter: {Class: ClassCombat, Speed: 12.5, Consumption: 20, Cargo: 50},
		HeavyFighter: {Class: ClassCombat, Speed: 10, Consumption: 75, Cargo: 100},
		Cruiser:      {Class: ClassCombat, Speed: 15, Consumption: 300, Cargo: 800},
		SpyProbe:     {Class: ClassReconnaissance, Speed: 100, Consumption: 1, Cargo: 0},
		ColonyShip:   {Class: ClassColonizer, Speed: 2.5, Consumption: 1000, Cargo: 7500},
	}
}

// Manifest maps ship kinds to a count.
type Manifest map[ShipKind]int

// Total is the number of ships in the manifest.
func (m Manifest) Total() int {
	total := 0
	for _, n := range m {
		if n > 0 {
			total += n
		}
	}
	return total
}

// Clone returns a copy without zero entries.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for kind, n := range m {
		if n > 0 {
			out[kind] = n
		}
	}
	return out
}

// Kinds returns the kinds with a positive count in stable order.
func (m Manifest) Kinds() []ShipKind {
	kinds := make([]ShipKind, 0, len(m))
	for kind, n := range m {
		if n > 0 {
			kinds = append(kinds, kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Losses returns how many ships of each kind are in m but not in survivors.
func (m Manifest) Losses(survivors Manifest) Manifest {
	lost := Manifest{}
	for kind, n := range m {
		if d := n - survivors[kind]; d > 0 {
			lost[kind] = d
		}
	}
	return lost
}

// OnlyClass reports whether every ship in m belongs to class.
func (c Catalog) OnlyClass(m Manifest, class ShipClass) bool {
	for _, kind := range m.Kinds() {
		spec, ok := c[kind]
		if !ok || spec.Class != class {
			return false
		}
	}
	return true
}

// CargoCapacity is the total cargo the manifest can carry.
func (c Catalog) CargoCapacity(m Manifest) float64 {
	var capacity float64
	for _, kind := range m.Kinds() {
		capacity += c[kind].Cargo * float64(m[kind])
	}
	return capacity
}
