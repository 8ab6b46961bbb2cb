package mission

import (
	"errors"
	"fmt"
)

// ErrValidation matches every dispatch precondition failure. Nothing is
// written when one is returned.
var ErrValidation = errors.New("mission validation failed")

type validationError struct {
	msg string
}

func newValidationError(msg string) error {
	return &validationError{msg: msg}
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

var (
	// ErrNoShips indicates the manifest holds no ships.
	ErrNoShips = newValidationError("mission needs at least one ship")
	// ErrUnknownKind indicates an unrecognised mission kind.
	ErrUnknownKind = newValidationError("unknown mission kind")
	// ErrNoResolver indicates a known kind that cannot be resolved yet.
	ErrNoResolver = newValidationError("mission kind is not available")
	// ErrShipNotAllowed indicates a ship class the mission kind forbids.
	ErrShipNotAllowed = newValidationError("ship type not allowed for this mission")
	// ErrUnknownShip indicates a ship kind missing from the catalog.
	ErrUnknownShip = newValidationError("unknown ship type")
	// ErrInvalidTarget indicates a target outside the galaxy.
	ErrInvalidTarget = newValidationError("invalid target coordinate")
	// ErrSameTarget indicates the target is the origin.
	ErrSameTarget = newValidationError("target is the origin planet")
	// ErrTargetEmpty indicates no planet occupies the target.
	ErrTargetEmpty = newValidationError("no planet at target")
	// ErrTargetOccupied indicates a colonize target already taken.
	ErrTargetOccupied = newValidationError("target already colonized")
	// ErrCargoNotAllowed indicates resources on a kind that carries none.
	ErrCargoNotAllowed = newValidationError("mission kind cannot carry resources")
	// ErrNoCargoSpace indicates resources attached to ships with no hold.
	ErrNoCargoSpace = newValidationError("fleet has no cargo capacity")
	// ErrCargoExceeded indicates more resources than the fleet can hold.
	ErrCargoExceeded = newValidationError("resources exceed cargo capacity")
	// ErrInvalidResources indicates negative resource amounts.
	ErrInvalidResources = newValidationError("resource amounts must not be negative")
	// ErrNoMissionSlots indicates the player runs the maximum missions.
	ErrNoMissionSlots = newValidationError("no free mission slots")
	// ErrShipsUnavailable indicates fewer available ships than requested.
	ErrShipsUnavailable = newValidationError("not enough ships available")
	// ErrInsufficientFuel indicates deuterium below the round-trip reservation.
	ErrInsufficientFuel = newValidationError("not enough deuterium for the round trip")
	// ErrInsufficientResources indicates the stock cannot cover the cargo.
	ErrInsufficientResources = newValidationError("not enough resources for the cargo")
)

var (
	// ErrMissionNotFound indicates the mission doesn't exist.
	ErrMissionNotFound = errors.New("mission not found")
	// ErrNotCancelable indicates the fleet already arrived or turned back.
	ErrNotCancelable = errors.New("mission can no longer be cancelled")
	// ErrInvalidTransition indicates an invalid lifecycle transition.
	ErrInvalidTransition = errors.New("invalid mission state transition")
)

// ResolutionError wraps a resolver failure. The mission still returns home.
type ResolutionError struct {
	MissionID string
	Kind      Kind
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s mission %s: %v", e.Kind, e.MissionID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
