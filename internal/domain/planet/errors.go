package planet

import "errors"

var (
	// ErrPlanetNotFound indicates the player has no home planet yet.
	ErrPlanetNotFound = errors.New("planet not found")
	// ErrAlreadyAssigned indicates the player already owns a home planet.
	ErrAlreadyAssigned = errors.New("home planet already assigned")
	// ErrNameTaken indicates another player holds the requested name.
	ErrNameTaken = errors.New("planet name already taken")
	// ErrCoordinateTaken indicates another planet occupies the coordinate.
	ErrCoordinateTaken = errors.New("coordinate already occupied")
	// ErrInsufficientShips indicates fewer ships are available than requested.
	ErrInsufficientShips = errors.New("not enough ships available")
	// ErrInsufficientResources indicates the stock cannot cover a debit.
	ErrInsufficientResources = errors.New("not enough resources")
	// ErrInvalidInput indicates a malformed planet request.
	ErrInvalidInput = errors.New("invalid planet input")
)
