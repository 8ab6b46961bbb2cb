// Package mission runs the fleet mission lifecycle: dispatch, arrival,
// resolution, return and cancellation.
package mission

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
)

// Kind is the purpose of a mission.
type Kind string

const (
	KindSpy       Kind = "spy"
	KindTransport Kind = "transport"
	KindDonation  Kind = "donation"
	KindColonize  Kind = "colonize"
	// KindAttack is reserved. No resolver is registered for it.
	KindAttack Kind = "attack"
)

// State is the lifecycle state of a mission.
type State string

const (
	StateOutbound  State = "OUTBOUND"
	StateResolving State = "RESOLVING"
	StateReturning State = "RETURNING"
	StateCompleted State = "COMPLETED"
	StateDestroyed State = "DESTROYED"
)

// Mission is an active fleet movement. Completed and destroyed missions
// are removed from storage.
type Mission struct {
	ID             string            `json:"id"`
	Kind           Kind              `json:"kind"`
	OwnerID        string            `json:"owner_id"`
	Origin         galaxy.Coordinate `json:"origin"`
	Target         galaxy.Coordinate `json:"target"`
	Ships          flight.Manifest   `json:"ships"`
	Resources      economy.Resources `json:"resources"`
	State          State             `json:"state"`
	DepartureTime  time.Time         `json:"departure_time"`
	ArrivalTime    time.Time         `json:"arrival_time"`
	ReturnTime     time.Time         `json:"return_time"`
	ResolvingSince time.Time         `json:"resolving_since,omitzero"`
	Fuel           int64             `json:"fuel"`
	Distance       float64           `json:"distance"`
	WasDetected    bool              `json:"was_detected,omitempty"`
	LastError      string            `json:"last_error,omitempty"`
}

// NextEvent is when the mission next needs attention.
func (m *Mission) NextEvent() time.Time {
	switch m.State {
	case StateOutbound:
		return m.ArrivalTime
	case StateResolving:
		return m.ResolvingSince
	default:
		return m.ReturnTime
	}
}

func (m *Mission) normalize() {
	if m.Ships == nil {
		m.Ships = flight.Manifest{}
	}
	if m.State == "" {
		m.State = StateOutbound
	}
}

func decodeMission(data []byte) (*Mission, error) {
	var m Mission
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding mission: %w", err)
	}
	m.normalize()
	return &m, nil
}

func (m *Mission) encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding mission: %w", err)
	}
	return data, nil
}

// DispatchRequest describes a mission to send.
type DispatchRequest struct {
	Kind      Kind
	Target    galaxy.Coordinate
	Ships     flight.Manifest
	Resources economy.Resources
}

// Summary counts what one ProcessActiveMissions pass did.
type Summary struct {
	Arrived   int `json:"arrived"`
	Returned  int `json:"returned"`
	Destroyed int `json:"destroyed"`
	Failed    int `json:"failed"`
}

// Add accumulates o into s.
func (s *Summary) Add(o Summary) {
	s.Arrived += o.Arrived
	s.Returned += o.Returned
	s.Destroyed += o.Destroyed
	s.Failed += o.Failed
}
