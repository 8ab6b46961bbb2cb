package flight

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/joaodperes/stardust/internal/domain/galaxy"
)

const (
	sameSystemBase  = 1000
	slotStep        = 5
	crossSystemBase = 2700
	systemStep      = 2000

	// MinFlightTime keeps trips from resolving instantly.
	MinFlightTime = 10 * time.Second
	fuelDivisor   = 35000
)

var (
	// ErrEmptyManifest means the manifest has no ships, so no speed exists.
	ErrEmptyManifest = errors.New("manifest has no ships")
	// ErrUnknownShip means the manifest names a kind missing from the catalog.
	ErrUnknownShip = errors.New("unknown ship kind")
)

// Distance between two coordinates. Travel inside a system is cheap; across
// systems it is dominated by the system delta.
func Distance(a, b galaxy.Coordinate) float64 {
	if a.System == b.System {
		return float64(abs(a.Slot-b.Slot)*slotStep + sameSystemBase)
	}
	return float64(abs(a.System-b.System)*systemStep + crossSystemBase)
}

// FleetSpeed is the speed of the slowest ship present.
func (c Catalog) FleetSpeed(m Manifest) (float64, error) {
	speed := math.Inf(1)
	for _, kind := range m.Kinds() {
		spec, ok := c[kind]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownShip, kind)
		}
		speed = math.Min(speed, spec.Speed)
	}
	if math.IsInf(speed, 1) {
		return 0, ErrEmptyManifest
	}
	return speed, nil
}

// FlightTime is distance/speed seconds with a MinFlightTime floor.
func FlightTime(distance, speed float64) time.Duration {
	if speed <= 0 {
		return MinFlightTime
	}
	d := time.Duration(distance / speed * float64(time.Second))
	if d < MinFlightTime {
		return MinFlightTime
	}
	return d
}

// SpeedMultiplier is the drive research bonus applied to fleet speed.
func SpeedMultiplier(driveLevel int) float64 {
	if driveLevel < 0 {
		driveLevel = 0
	}
	return 1 + 0.1*float64(driveLevel)
}

// FuelCost is the deuterium burned on one leg. Each kind present costs at
// least one unit.
func (c Catalog) FuelCost(distance float64, m Manifest) int64 {
	var total int64
	for _, kind := range m.Kinds() {
		consumption := c[kind].Consumption
		total += 1 + int64(math.Ceil(consumption*float64(m[kind])*distance/fuelDivisor))
	}
	return total
}

// Reservation is the deuterium a dispatch must hold for a round trip plus a
// ten percent margin: ceil(fuel * 2.1).
func Reservation(fuel int64) int64 {
	return (fuel*21 + 9) / 10
}

// Plan summarizes a flight between two coordinates.
type Plan struct {
	Distance float64       `json:"distance"`
	Speed    float64       `json:"speed"`
	Duration time.Duration `json:"duration"`
	Fuel     int64         `json:"fuel"`
	Reserve  int64         `json:"reserve"`
	Cargo    float64       `json:"cargo"`
}

// PlanFlight computes the distance, duration, fuel and cargo of a leg.
func (c Catalog) PlanFlight(origin, target galaxy.Coordinate, m Manifest, driveLevel int) (Plan, error) {
	speed, err := c.FleetSpeed(m)
	if err != nil {
		return Plan{}, err
	}
	speed *= SpeedMultiplier(driveLevel)
	distance := Distance(origin, target)
	fuel := c.FuelCost(distance, m)
	return Plan{
		Distance: distance,
		Speed:    speed,
		Duration: FlightTime(distance, speed),
		Fuel:     fuel,
		Reserve:  Reservation(fuel),
		Cargo:    c.CargoCapacity(m),
	}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
