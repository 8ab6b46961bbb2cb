package flight_test

import (
	"testing"
	"time"

	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b galaxy.Coordinate
		want float64
	}{
		{"same slot", galaxy.Coordinate{System: 4, Slot: 7}, galaxy.Coordinate{System: 4, Slot: 7}, 1000},
		{"same system", galaxy.Coordinate{System: 4, Slot: 1}, galaxy.Coordinate{System: 4, Slot: 9}, 1040},
		{"adjacent systems", galaxy.Coordinate{System: 4, Slot: 1}, galaxy.Coordinate{System: 5, Slot: 15}, 4700},
		{"far systems", galaxy.Coordinate{System: 1, Slot: 1}, galaxy.Coordinate{System: 100, Slot: 1}, 200700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, flight.Distance(tt.a, tt.b))
			require.Equal(t, tt.want, flight.Distance(tt.b, tt.a))
		})
	}
}

func TestFleetSpeed_SlowestShip(t *testing.T) {
	catalog := flight.DefaultCatalog()

	speed, err := catalog.FleetSpeed(flight.Manifest{flight.SpyProbe: 3, flight.LargeCargo: 1})
	require.NoError(t, err)
	require.Equal(t, 7.5, speed)

	speed, err = catalog.FleetSpeed(flight.Manifest{flight.SpyProbe: 3, flight.LargeCargo: 0})
	require.NoError(t, err)
	require.Equal(t, 100.0, speed)
}

func TestFleetSpeed_EmptyManifest(t *testing.T) {
	catalog := flight.DefaultCatalog()

	_, err := catalog.FleetSpeed(flight.Manifest{})
	require.ErrorIs(t, err, flight.ErrEmptyManifest)

	_, err = catalog.FleetSpeed(flight.Manifest{flight.SmallCargo: 0})
	require.ErrorIs(t, err, flight.ErrEmptyManifest)
}

func TestFleetSpeed_UnknownShip(t *testing.T) {
	_, err := flight.DefaultCatalog().FleetSpeed(flight.Manifest{"deathstar": 1})
	require.ErrorIs(t, err, flight.ErrUnknownShip)
}

func TestFlightTime(t *testing.T) {
	require.Equal(t, flight.MinFlightTime, flight.FlightTime(1000, 1000))
	require.Equal(t, 100*time.Second, flight.FlightTime(1000, 10))
	require.Equal(t, flight.MinFlightTime, flight.FlightTime(1000, 0))
}

func TestFuelCost_Monotonic(t *testing.T) {
	catalog := flight.DefaultCatalog()
	manifest := flight.Manifest{flight.SmallCargo: 4}

	previous := catalog.FuelCost(1000, manifest)
	for _, d := range []float64{1040, 4700, 20700, 200700} {
		fuel := catalog.FuelCost(d, manifest)
		require.GreaterOrEqual(t, fuel, previous)
		previous = fuel
	}

	fewer := catalog.FuelCost(4700, flight.Manifest{flight.SmallCargo: 1})
	more := catalog.FuelCost(4700, flight.Manifest{flight.SmallCargo: 10})
	require.GreaterOrEqual(t, more, fewer)
}

func TestFuelCost_PerKindMinimum(t *testing.T) {
	catalog := flight.DefaultCatalog()

	// 1 probe over 1000: 1 + ceil(1*1*1000/35000) = 2
	require.Equal(t, int64(2), catalog.FuelCost(1000, flight.Manifest{flight.SpyProbe: 1}))
	// two kinds each pay their own minimum
	require.Equal(t, int64(4), catalog.FuelCost(1000, flight.Manifest{flight.SpyProbe: 1, flight.SmallCargo: 1}))
}

func TestReservation(t *testing.T) {
	require.Equal(t, int64(0), flight.Reservation(0))
	require.Equal(t, int64(3), flight.Reservation(1))
	require.Equal(t, int64(21), flight.Reservation(10))
	require.Equal(t, int64(26), flight.Reservation(12))
}

func TestCargoCapacity(t *testing.T) {
	catalog := flight.DefaultCatalog()
	require.Equal(t, 10000.0, catalog.CargoCapacity(flight.Manifest{flight.SmallCargo: 2}))
	require.Zero(t, catalog.CargoCapacity(flight.Manifest{flight.SpyProbe: 10}))
}

func TestPlanFlight(t *testing.T) {
	catalog := flight.DefaultCatalog()
	origin := galaxy.Coordinate{System: 1, Slot: 1}
	target := galaxy.Coordinate{System: 1, Slot: 5}

	plan, err := catalog.PlanFlight(origin, target, flight.Manifest{flight.SmallCargo: 1}, 0)
	require.NoError(t, err)
	require.Equal(t, 1020.0, plan.Distance)
	require.Equal(t, 10.0, plan.Speed)
	require.Equal(t, 102*time.Second, plan.Duration)
	require.Equal(t, int64(2), plan.Fuel)
	require.Equal(t, int64(5), plan.Reserve)

	boosted, err := catalog.PlanFlight(origin, target, flight.Manifest{flight.SmallCargo: 1}, 10)
	require.NoError(t, err)
	require.Equal(t, 20.0, boosted.Speed)
	require.Less(t, boosted.Duration, plan.Duration)
}

func TestManifestLosses(t *testing.T) {
	sent := flight.Manifest{flight.SmallCargo: 3, flight.SpyProbe: 2}
	lost := sent.Losses(flight.Manifest{flight.SmallCargo: 1})
	require.Equal(t, flight.Manifest{flight.SmallCargo: 2, flight.SpyProbe: 2}, lost)
	require.Equal(t, 5, sent.Total())
}
