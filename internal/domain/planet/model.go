// Package planet persists player planets and keeps their resource stock
// reconciled with the accrual model.
package planet

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
)

// ResearchKind names a research track.
type ResearchKind string

const (
	Espionage       ResearchKind = "espionage"
	CombustionDrive ResearchKind = "combustion_drive"
	ComputerTech    ResearchKind = "computer_technology"
	EnergyTech      ResearchKind = "energy_technology"
)

// Ships counts the ships of one kind. Available excludes ships in flight.
type Ships struct {
	Owned     int `json:"owned"`
	Available int `json:"available"`
}

// State is the persisted planet document of a player.
type State struct {
	PlayerID   string                    `json:"player_id"`
	Name       string                    `json:"name,omitempty"`
	Coordinate galaxy.Coordinate         `json:"coordinate"`
	Archetype  economy.Archetype         `json:"archetype"`
	Resources  economy.Resources         `json:"resources"`
	Buildings  economy.Levels            `json:"buildings"`
	Research   map[ResearchKind]int      `json:"research"`
	Fleet      map[flight.ShipKind]Ships `json:"fleet"`
	Colonies   []galaxy.Coordinate       `json:"colonies,omitempty"`
	IsBot      bool                      `json:"is_bot,omitempty"`
	LastTick   time.Time                 `json:"last_tick"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// Decode reads a stored planet document and fills in missing maps.
func Decode(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding planet: %w", err)
	}
	st.normalize()
	return &st, nil
}

// Encode serializes the planet document.
func (s *State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding planet: %w", err)
	}
	return data, nil
}

func (s *State) normalize() {
	if s.Archetype == "" {
		s.Archetype = economy.Balanced
	}
	if s.Buildings == nil {
		s.Buildings = economy.Levels{}
	}
	if s.Research == nil {
		s.Research = map[ResearchKind]int{}
	}
	if s.Fleet == nil {
		s.Fleet = map[flight.ShipKind]Ships{}
	}
	if s.Resources.Negative() {
		s.Resources = economy.Resources{
			Metal:     max(s.Resources.Metal, 0),
			Crystal:   max(s.Resources.Crystal, 0),
			Deuterium: max(s.Resources.Deuterium, 0),
		}
	}
	for kind, ships := range s.Fleet {
		if ships.Available > ships.Owned {
			ships.Available = ships.Owned
			s.Fleet[kind] = ships
		}
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := *s
	out.Buildings = make(economy.Levels, len(s.Buildings))
	for k, v := range s.Buildings {
		out.Buildings[k] = v
	}
	out.Research = make(map[ResearchKind]int, len(s.Research))
	for k, v := range s.Research {
		out.Research[k] = v
	}
	out.Fleet = make(map[flight.ShipKind]Ships, len(s.Fleet))
	for k, v := range s.Fleet {
		out.Fleet[k] = v
	}
	out.Colonies = slices.Clone(s.Colonies)
	return &out
}

// AvailableShips returns the ships ready for dispatch.
func (s *State) AvailableShips() flight.Manifest {
	m := flight.Manifest{}
	for kind, ships := range s.Fleet {
		if ships.Available > 0 {
			m[kind] = ships.Available
		}
	}
	return m
}

// OwnedShips returns every ship the planet owns, in flight or not.
func (s *State) OwnedShips() flight.Manifest {
	m := flight.Manifest{}
	for kind, ships := range s.Fleet {
		if ships.Owned > 0 {
			m[kind] = ships.Owned
		}
	}
	return m
}

// Reserve marks ships as in flight.
func (s *State) Reserve(m flight.Manifest) error {
	for _, kind := range m.Kinds() {
		if s.Fleet[kind].Available < m[kind] {
			return fmt.Errorf("%w: %s needs %d, has %d", ErrInsufficientShips, kind, m[kind], s.Fleet[kind].Available)
		}
	}
	for _, kind := range m.Kinds() {
		ships := s.Fleet[kind]
		ships.Available -= m[kind]
		s.Fleet[kind] = ships
	}
	return nil
}

// Release returns in-flight ships to the available pool.
func (s *State) Release(m flight.Manifest) {
	for _, kind := range m.Kinds() {
		ships := s.Fleet[kind]
		ships.Available = min(ships.Available+m[kind], ships.Owned)
		s.Fleet[kind] = ships
	}
}

// Lose removes in-flight ships from the owned count.
func (s *State) Lose(m flight.Manifest) {
	for _, kind := range m.Kinds() {
		ships := s.Fleet[kind]
		ships.Owned = max(ships.Owned-m[kind], ships.Available)
		s.Fleet[kind] = ships
	}
}

// Grant adds new ships, owned and available.
func (s *State) Grant(m flight.Manifest) {
	for _, kind := range m.Kinds() {
		ships := s.Fleet[kind]
		ships.Owned += m[kind]
		ships.Available += m[kind]
		s.Fleet[kind] = ships
	}
}

// Debit removes resources from the stock.
func (s *State) Debit(r economy.Resources) error {
	if !s.Resources.Covers(r) {
		return fmt.Errorf("%w: need %.0f/%.0f/%.0f", ErrInsufficientResources, r.Metal, r.Crystal, r.Deuterium)
	}
	s.Resources = s.Resources.Sub(r)
	return nil
}

// Credit adds resources to the stock. Deliveries may exceed capacity.
func (s *State) Credit(r economy.Resources) {
	s.Resources = s.Resources.Add(r)
}

// HasColony reports whether c is one of the planet's colonies.
func (s *State) HasColony(c galaxy.Coordinate) bool {
	return slices.Contains(s.Colonies, c)
}

// ResearchLevel returns the level of a research track.
func (s *State) ResearchLevel(kind ResearchKind) int {
	return s.Research[kind]
}
