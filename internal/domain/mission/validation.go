package mission

import (
	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
)

// ValidateTransition validates a lifecycle transition.
func ValidateTransition(from, to State) error {
	valid := false
	switch from {
	case StateOutbound:
		switch to {
		case StateResolving, StateCompleted:
			valid = true
		}
	case StateResolving:
		if to == StateReturning || to == StateDestroyed {
			valid = true
		}
	case StateReturning:
		if to == StateCompleted {
			valid = true
		}
	}

	if !valid {
		return ErrInvalidTransition
	}
	return nil
}

// carriesCargo reports whether a kind may take resources along.
func carriesCargo(kind Kind) bool {
	return kind == KindTransport || kind == KindDonation
}

// validateRequest checks what can be decided without reading state.
func validateRequest(catalog flight.Catalog, registry *Registry, req DispatchRequest) error {
	switch req.Kind {
	case KindSpy, KindTransport, KindDonation, KindColonize, KindAttack:
	default:
		return ErrUnknownKind
	}
	if _, ok := registry.Get(req.Kind); !ok {
		return ErrNoResolver
	}

	if req.Ships.Total() == 0 {
		return ErrNoShips
	}
	for kind, n := range req.Ships {
		if n < 0 {
			return ErrNoShips
		}
		if _, ok := catalog[kind]; !ok && n > 0 {
			return ErrUnknownShip
		}
	}

	switch req.Kind {
	case KindSpy:
		if !catalog.OnlyClass(req.Ships, flight.ClassReconnaissance) {
			return ErrShipNotAllowed
		}
	case KindColonize:
		if !catalog.OnlyClass(req.Ships, flight.ClassColonizer) {
			return ErrShipNotAllowed
		}
	}

	if !req.Target.Valid() {
		return ErrInvalidTarget
	}

	if req.Resources.Negative() {
		return ErrInvalidResources
	}
	if req.Resources.IsZero() {
		return nil
	}
	if !carriesCargo(req.Kind) {
		return ErrCargoNotAllowed
	}
	capacity := catalog.CargoCapacity(req.Ships)
	if capacity <= 0 {
		return ErrNoCargoSpace
	}
	if req.Resources.Total() > capacity {
		return ErrCargoExceeded
	}
	return nil
}

// required is what the origin must hold for a dispatch: the round-trip fuel
// reservation plus the cargo.
func required(fuel int64, cargo economy.Resources) economy.Resources {
	return cargo.Add(economy.Resources{Deuterium: float64(flight.Reservation(fuel))})
}
