package mission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/journal"
	"github.com/joaodperes/stardust/internal/repository"
)

// Service handles mission operations.
type Service struct {
	store    repository.Store
	planets  Planets
	reports  Reports
	registry *Registry
	catalog  flight.Catalog
	maxSlots int
	lease    time.Duration
	journal  Journal
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new mission service.
func NewService(store repository.Store, planets Planets, reports Reports, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		store:    store,
		planets:  planets,
		reports:  reports,
		registry: opts.Registry,
		catalog:  opts.Catalog,
		maxSlots: opts.MaxSlots,
		lease:    opts.ResolvingLease,
		journal:  opts.Journal,
		logger:   logger,
		now:      opts.Now,
	}
	if s.catalog == nil {
		s.catalog = flight.DefaultCatalog()
	}
	if s.maxSlots <= 0 {
		s.maxSlots = DefaultMaxSlots
	}
	if s.lease <= 0 {
		s.lease = DefaultResolvingLease
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.registry == nil {
		roll := opts.Roll
		if roll == nil {
			roll = rand.Float64
		}
		s.registry = DefaultRegistry(planets, roll)
	}
	return s
}

// Catalog returns the ship catalog missions fly with.
func (s *Service) Catalog() flight.Catalog {
	return s.catalog
}

// MaxActive is the number of concurrent missions a planet may run.
func (s *Service) MaxActive(st *planet.State) int {
	return min(1+st.Buildings[economy.CommandCenter], s.maxSlots)
}

// Preview plans a flight from the player's planet without dispatching.
func (s *Service) Preview(ctx context.Context, playerID string, target galaxy.Coordinate, ships flight.Manifest) (flight.Plan, error) {
	if !target.Valid() {
		return flight.Plan{}, ErrInvalidTarget
	}
	st, err := s.planets.Get(ctx, playerID)
	if err != nil {
		return flight.Plan{}, err
	}
	plan, err := s.catalog.PlanFlight(st.Coordinate, target, ships, st.ResearchLevel(planet.CombustionDrive))
	if err != nil {
		return flight.Plan{}, mapFlightError(err)
	}
	return plan, nil
}

// Dispatch validates req and launches the mission. The planet debit and the
// mission record commit together; on any error nothing is written.
func (s *Service) Dispatch(ctx context.Context, playerID string, req DispatchRequest) (*Mission, error) {
	req.Ships = req.Ships.Clone()
	if err := validateRequest(s.catalog, s.registry, req); err != nil {
		return nil, err
	}

	occupant, occupied, err := s.planets.Occupant(ctx, req.Target)
	if err != nil {
		return nil, fmt.Errorf("checking target: %w", err)
	}
	switch {
	case req.Kind == KindColonize && occupied:
		return nil, ErrTargetOccupied
	case req.Kind != KindColonize && !occupied:
		return nil, ErrTargetEmpty
	case req.Kind == KindSpy && occupant == playerID:
		return nil, ErrSameTarget
	}

	id := uuid.NewString()
	var m *Mission
	err = s.store.Atomic(ctx, func(txn repository.Txn) error {
		now := s.now().UTC()
		st, err := s.planets.Load(ctx, txn, playerID, now)
		if err != nil {
			return err
		}
		if st.Coordinate == req.Target {
			return ErrSameTarget
		}

		active, err := txn.List(ctx, repository.MissionsPrefix(playerID))
		if err != nil {
			return fmt.Errorf("counting missions: %w", err)
		}
		if len(active) >= s.MaxActive(st) {
			return ErrNoMissionSlots
		}

		plan, err := s.catalog.PlanFlight(st.Coordinate, req.Target, req.Ships, st.ResearchLevel(planet.CombustionDrive))
		if err != nil {
			return mapFlightError(err)
		}

		if err := st.Reserve(req.Ships); err != nil {
			return ErrShipsUnavailable
		}
		need := required(plan.Fuel, req.Resources)
		if st.Resources.Deuterium < need.Deuterium {
			return ErrInsufficientFuel
		}
		if !st.Resources.Covers(need) {
			return ErrInsufficientResources
		}
		outbound := req.Resources.Add(economy.Resources{Deuterium: float64(plan.Fuel)})
		if err := st.Debit(outbound); err != nil {
			return ErrInsufficientResources
		}

		m = &Mission{
			ID:            id,
			Kind:          req.Kind,
			OwnerID:       playerID,
			Origin:        st.Coordinate,
			Target:        req.Target,
			Ships:         req.Ships,
			Resources:     req.Resources,
			State:         StateOutbound,
			DepartureTime: now,
			ArrivalTime:   now.Add(plan.Duration),
			ReturnTime:    now.Add(2 * plan.Duration),
			Fuel:          plan.Fuel,
			Distance:      plan.Distance,
		}
		data, err := m.encode()
		if err != nil {
			return err
		}
		if err := planet.Save(txn, st); err != nil {
			return err
		}
		txn.Put(repository.MissionPath(playerID, id), data)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, planet.ErrPlanetNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("dispatching mission: %w", err)
	}

	s.logger.Info("mission dispatched",
		"player", playerID, "mission", m.ID, "kind", m.Kind,
		"target", m.Target.String(), "arrival", m.ArrivalTime, "fuel", m.Fuel)
	s.record("dispatch", m, map[string]any{
		"target": m.Target.String(), "ships": m.Ships, "fuel": m.Fuel, "arrival": m.ArrivalTime,
	})
	return m, nil
}

// Cancel recalls an outbound mission before it arrives. Ships, cargo and
// outbound fuel are refunded and the mission is removed.
func (s *Service) Cancel(ctx context.Context, playerID, missionID string) (*Mission, error) {
	var m *Mission
	err := s.store.Atomic(ctx, func(txn repository.Txn) error {
		now := s.now().UTC()
		data, err := txn.Get(ctx, repository.MissionPath(playerID, missionID))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMissionNotFound
			}
			return err
		}
		m, err = decodeMission(data)
		if err != nil {
			return err
		}
		if m.State != StateOutbound || !now.Before(m.ArrivalTime) {
			return ErrNotCancelable
		}

		st, err := s.planets.Load(ctx, txn, playerID, now)
		if err != nil {
			return err
		}
		st.Release(m.Ships)
		st.Credit(m.Resources.Add(economy.Resources{Deuterium: float64(m.Fuel)}))
		if err := planet.Save(txn, st); err != nil {
			return err
		}
		txn.Delete(repository.MissionPath(playerID, missionID))
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrMissionNotFound) || errors.Is(err, ErrNotCancelable) || errors.Is(err, planet.ErrPlanetNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("cancelling mission: %w", err)
	}

	m.State = StateCompleted
	s.logger.Info("mission cancelled", "player", playerID, "mission", missionID)
	s.record("cancel", m, nil)
	return m, nil
}

// Get fetches one active mission.
func (s *Service) Get(ctx context.Context, playerID, missionID string) (*Mission, error) {
	data, err := s.store.Read(ctx, repository.MissionPath(playerID, missionID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMissionNotFound
		}
		return nil, fmt.Errorf("getting mission: %w", err)
	}
	return decodeMission(data)
}

// ListActive returns the player's missions ordered by their next event.
func (s *Service) ListActive(ctx context.Context, playerID string) ([]Mission, error) {
	entries, err := s.store.List(ctx, repository.MissionsPrefix(playerID))
	if err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}

	missions := make([]Mission, 0, len(entries))
	for _, entry := range entries {
		m, err := decodeMission(entry.Value)
		if err != nil {
			s.logger.Warn("skipping unreadable mission", "path", entry.Path, "error", err)
			continue
		}
		missions = append(missions, *m)
	}
	sort.SliceStable(missions, func(i, j int) bool {
		return missions[i].NextEvent().Before(missions[j].NextEvent())
	})
	return missions, nil
}

func mapFlightError(err error) error {
	switch {
	case errors.Is(err, flight.ErrEmptyManifest):
		return ErrNoShips
	case errors.Is(err, flight.ErrUnknownShip):
		return ErrUnknownShip
	default:
		return err
	}
}

func (s *Service) record(typ string, m *Mission, data map[string]any) {
	if s.journal == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["kind"] = m.Kind
	e, err := journal.NewEvent(typ, m.OwnerID, m.ID, data)
	if err == nil {
		err = s.journal.Append(e)
	}
	if err != nil {
		s.logger.Warn("journal append failed", "event", typ, "mission", m.ID, "error", err)
	}
}
