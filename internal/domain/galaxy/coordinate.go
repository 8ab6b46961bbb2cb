// Package galaxy defines planet coordinates and the bounds of the galaxy.
package galaxy

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	MinSystem = 1
	MaxSystem = 100
	MinSlot   = 1
	MaxSlot   = 15
)

// ErrInvalidCoordinate indicates a malformed or out-of-range coordinate.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate locates a planet slot. Both parts are 1-indexed.
type Coordinate struct {
	System int `json:"system"`
	Slot   int `json:"slot"`
}

// String formats the coordinate as "system:slot".
func (c Coordinate) String() string {
	return fmt.Sprintf("%d:%d", c.System, c.Slot)
}

// Valid reports whether the coordinate lies inside the galaxy.
func (c Coordinate) Valid() bool {
	return c.System >= MinSystem && c.System <= MaxSystem &&
		c.Slot >= MinSlot && c.Slot <= MaxSlot
}

// IsZero reports whether the coordinate is unset.
func (c Coordinate) IsZero() bool {
	return c.System == 0 && c.Slot == 0
}

// Parse reads "system:slot", tolerating surrounding brackets as in "[1:3]".
func Parse(s string) (Coordinate, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")
	systemPart, slotPart, ok := strings.Cut(trimmed, ":")
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	system, err := strconv.Atoi(systemPart)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	slot, err := strconv.Atoi(slotPart)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	c := Coordinate{System: system, Slot: slot}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: %q out of range", ErrInvalidCoordinate, s)
	}
	return c, nil
}

// Random picks a uniformly distributed coordinate.
func Random(r *rand.Rand) Coordinate {
	return Coordinate{
		System: MinSystem + r.IntN(MaxSystem-MinSystem+1),
		Slot:   MinSlot + r.IntN(MaxSlot-MinSlot+1),
	}
}
