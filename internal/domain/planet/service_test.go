package planet_test

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/joaodperes/stardust/internal/domain/allocation"
	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/repository"
	"github.com/joaodperes/stardust/internal/repository/mocks"
	"github.com/joaodperes/stardust/internal/sqlite/sqlitetest"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newService(t *testing.T) (*planet.Service, repository.Store, *clock) {
	t.Helper()
	store := sqlitetest.NewStore(t)
	clk := &clock{now: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	alloc := allocation.NewAllocator(store, nil, allocation.WithClock(clk.Now), allocation.WithRand(rand.New(rand.NewPCG(7, 7))))
	svc := planet.NewService(store, alloc, nil, planet.WithClock(clk.Now), planet.WithRand(rand.New(rand.NewPCG(3, 4))))
	return svc, store, clk
}

func TestAssignHomePlanet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	st, err := svc.AssignHomePlanet(ctx, "alice", planet.AssignRequest{
		Archetype: economy.MetalRich,
		Ships:     flight.Manifest{flight.SmallCargo: 2},
	})
	require.NoError(t, err)
	require.True(t, st.Coordinate.Valid())
	require.Equal(t, economy.MetalRich, st.Archetype)
	require.Equal(t, planet.Ships{Owned: 3, Available: 3}, st.Fleet[flight.SmallCargo])
	require.Equal(t, planet.Ships{Owned: 1, Available: 1}, st.Fleet[flight.SpyProbe])

	occupant, ok, err := svc.Occupant(ctx, st.Coordinate)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", occupant)

	_, err = svc.AssignHomePlanet(ctx, "alice", planet.AssignRequest{})
	require.ErrorIs(t, err, planet.ErrAlreadyAssigned)

	_, err = svc.AssignHomePlanet(ctx, "bad/id", planet.AssignRequest{})
	require.ErrorIs(t, err, planet.ErrInvalidInput)
}

func TestAssignHomePlanet_GalaxyFullLeavesNoPlanet(t *testing.T) {
	store := &mocks.Store{}
	alloc := allocation.NewAllocator(store, nil, allocation.WithRand(rand.New(rand.NewPCG(7, 7))))
	svc := planet.NewService(store, alloc, nil)

	holder, err := json.Marshal(allocation.Claim{Namespace: allocation.NamespaceCoordinates, OwnerID: "someone"})
	require.NoError(t, err)
	coordinates := repository.ClaimPath(allocation.NamespaceCoordinates, "")
	store.On("Read", mock.Anything, repository.PlanetPath("zed")).Return(nil, repository.ErrNotFound)
	store.On("TransactionalUpdate", mock.Anything, mock.MatchedBy(func(path string) bool {
		return strings.HasPrefix(path, coordinates)
	}), mock.Anything).Return(repository.UpdateResult{Committed: false, Value: holder}, nil)

	st, err := svc.AssignHomePlanet(context.Background(), "zed", planet.AssignRequest{})
	require.ErrorIs(t, err, allocation.ErrExhausted)
	require.Nil(t, st)

	store.AssertNotCalled(t, "TransactionalUpdate", mock.Anything, repository.PlanetPath("zed"), mock.Anything)
	store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "BatchUpdate", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Atomic", mock.Anything, mock.Anything)
}

func TestGet_ReconcilesWithoutWriting(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newService(t)

	created, err := svc.AssignHomePlanet(ctx, "alice", planet.AssignRequest{Archetype: economy.Balanced})
	require.NoError(t, err)

	clk.now = clk.now.Add(2 * time.Hour)
	st, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Greater(t, st.Resources.Metal, created.Resources.Metal)
	require.Equal(t, clk.now, st.LastTick)

	raw, err := store.Read(ctx, repository.PlanetPath("alice"))
	require.NoError(t, err)
	stored, err := planet.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, created.Resources, stored.Resources)

	_, err = svc.Get(ctx, "nobody")
	require.ErrorIs(t, err, planet.ErrPlanetNotFound)
}

func TestCredit(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.AssignHomePlanet(ctx, "bob", planet.AssignRequest{})
	require.NoError(t, err)

	st, err := svc.Credit(ctx, "bob", economy.Resources{Metal: 1000}, flight.Manifest{flight.LargeCargo: 2})
	require.NoError(t, err)
	require.Equal(t, 1500.0, st.Resources.Metal)
	require.Equal(t, planet.Ships{Owned: 2, Available: 2}, st.Fleet[flight.LargeCargo])

	_, err = svc.Credit(ctx, "nobody", economy.Resources{Metal: 1}, nil)
	require.ErrorIs(t, err, planet.ErrPlanetNotFound)
}

func TestReserveName(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.AssignHomePlanet(ctx, "alice", planet.AssignRequest{})
	require.NoError(t, err)
	_, err = svc.AssignHomePlanet(ctx, "bob", planet.AssignRequest{})
	require.NoError(t, err)

	st, err := svc.ReserveName(ctx, "alice", "Vega")
	require.NoError(t, err)
	require.Equal(t, "Vega", st.Name)

	_, err = svc.ReserveName(ctx, "bob", "vega")
	require.ErrorIs(t, err, planet.ErrNameTaken)

	st, err = svc.ReserveName(ctx, "alice", "VEGA")
	require.NoError(t, err)
	require.Equal(t, "VEGA", st.Name)

	_, err = svc.ReserveName(ctx, "bob", "")
	require.ErrorIs(t, err, planet.ErrInvalidInput)
}

func TestFoundColony_ResolvesToHome(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	home, err := svc.AssignHomePlanet(ctx, "alice", planet.AssignRequest{})
	require.NoError(t, err)

	target := galaxy.Coordinate{System: 1, Slot: 1}
	if home.Coordinate == target {
		target = galaxy.Coordinate{System: 1, Slot: 2}
	}

	ok, err := svc.FoundColony(ctx, "alice", target)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.FoundColony(ctx, "alice", target)
	require.NoError(t, err)
	require.False(t, ok)

	st, found, err := svc.FindByCoordinate(ctx, target)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alice", st.PlayerID)
	require.Equal(t, []galaxy.Coordinate{target}, st.Colonies)

	empty := galaxy.Coordinate{System: 99, Slot: 15}
	if home.Coordinate == empty {
		empty = galaxy.Coordinate{System: 99, Slot: 14}
	}
	_, found, err = svc.FindByCoordinate(ctx, empty)
	require.NoError(t, err)
	require.False(t, found)
}

func TestListPlayers(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.AssignHomePlanet(ctx, id, planet.AssignRequest{})
		require.NoError(t, err)
	}
	require.NoError(t, store.Write(ctx, repository.ReportPath("a", "r1"), []byte(`{}`)))

	ids, err := svc.ListPlayers(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}

func TestState_FleetAccounting(t *testing.T) {
	st, err := planet.Decode([]byte(`{"player_id":"p","fleet":{"small_cargo":{"owned":5,"available":5}}}`))
	require.NoError(t, err)
	require.Equal(t, economy.Balanced, st.Archetype)
	require.NotNil(t, st.Buildings)

	require.NoError(t, st.Reserve(flight.Manifest{flight.SmallCargo: 3}))
	require.Equal(t, planet.Ships{Owned: 5, Available: 2}, st.Fleet[flight.SmallCargo])

	err = st.Reserve(flight.Manifest{flight.SmallCargo: 3})
	require.ErrorIs(t, err, planet.ErrInsufficientShips)
	require.Equal(t, 2, st.Fleet[flight.SmallCargo].Available)

	st.Lose(flight.Manifest{flight.SmallCargo: 1})
	st.Release(flight.Manifest{flight.SmallCargo: 2})
	require.Equal(t, planet.Ships{Owned: 4, Available: 4}, st.Fleet[flight.SmallCargo])

	require.ErrorIs(t, st.Debit(economy.Resources{Metal: 1}), planet.ErrInsufficientResources)
}
