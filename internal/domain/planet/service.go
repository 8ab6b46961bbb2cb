package planet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/joaodperes/stardust/internal/domain/allocation"
	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/repository"
)

// Getter reads a stored value. repository.Txn satisfies it.
type Getter interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Service handles planet operations.
type Service struct {
	store   repository.Store
	alloc   *allocation.Allocator
	model   economy.Model
	starter Starter
	logger  *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a new planet service.
func NewService(store repository.Store, alloc *allocation.Allocator, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		store:   store,
		alloc:   alloc,
		model:   economy.DefaultModel(),
		starter: DefaultStarter(),
		logger:  logger,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the accrual model the service reconciles with.
func (s *Service) Model() economy.Model {
	return s.model
}

// Reconcile credits production up to now.
func (s *Service) Reconcile(st *State, now time.Time) {
	if st.LastTick.IsZero() {
		st.LastTick = now
		return
	}
	st.Resources, st.LastTick = s.model.Reconcile(st.Resources, st.Buildings, st.Archetype.Multiplier(), st.LastTick, now)
}

// Energy is the planet's current energy balance.
func (s *Service) Energy(st *State) float64 {
	return s.model.EnergyBalance(st.Buildings)
}

// Capacity is the storage limit of each resource.
func (s *Service) Capacity(st *State) economy.Resources {
	return s.model.Capacities(st.Buildings)
}

// Get returns the player's planet reconciled to now. Nothing is written.
func (s *Service) Get(ctx context.Context, playerID string) (*State, error) {
	data, err := s.store.Read(ctx, repository.PlanetPath(playerID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanetNotFound
		}
		return nil, fmt.Errorf("getting planet: %w", err)
	}
	st, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.Reconcile(st, s.now())
	return st, nil
}

// Load reads the planet through g and reconciles it to now. Use it inside
// Store.Atomic with the transaction as g.
func (s *Service) Load(ctx context.Context, g Getter, playerID string, now time.Time) (*State, error) {
	data, err := g.Get(ctx, repository.PlanetPath(playerID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanetNotFound
		}
		return nil, fmt.Errorf("loading planet: %w", err)
	}
	st, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.Reconcile(st, now)
	return st, nil
}

// Save buffers the planet into txn.
func Save(txn repository.Txn, st *State) error {
	data, err := st.Encode()
	if err != nil {
		return err
	}
	txn.Put(repository.PlanetPath(st.PlayerID), data)
	return nil
}

// Update reconciles the planet and applies fn under compare-and-swap. fn
// may run more than once when writers race.
func (s *Service) Update(ctx context.Context, playerID string, fn func(*State) error) (*State, error) {
	var updated *State
	_, err := s.store.TransactionalUpdate(ctx, repository.PlanetPath(playerID), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, ErrPlanetNotFound
		}
		st, err := Decode(current)
		if err != nil {
			return nil, err
		}
		s.Reconcile(st, s.now())
		if err := fn(st); err != nil {
			return nil, err
		}
		updated = st
		return st.Encode()
	})
	if err != nil {
		return nil, fmt.Errorf("updating planet: %w", err)
	}
	return updated, nil
}

// Credit adds resources and ships to a planet.
func (s *Service) Credit(ctx context.Context, playerID string, res economy.Resources, ships flight.Manifest) (*State, error) {
	if res.Negative() {
		return nil, ErrInvalidInput
	}
	return s.Update(ctx, playerID, func(st *State) error {
		st.Credit(res)
		st.Grant(ships)
		return nil
	})
}

// AssignHomePlanet claims a free coordinate and creates the player's planet.
// The coordinate claim is the only write before the planet exists, so an
// exhausted galaxy leaves nothing behind.
func (s *Service) AssignHomePlanet(ctx context.Context, playerID string, req AssignRequest) (*State, error) {
	if err := validatePlayerID(playerID); err != nil {
		return nil, err
	}

	if _, err := s.store.Read(ctx, repository.PlanetPath(playerID)); err == nil {
		return nil, ErrAlreadyAssigned
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking planet: %w", err)
	}

	res, err := s.alloc.ClaimRandom(ctx, allocation.NamespaceCoordinates, allocation.RandomCoordinate,
		allocation.Claim{OwnerID: playerID, Payload: json.RawMessage(`{"kind":"home"}`)})
	if err != nil {
		return nil, fmt.Errorf("assigning home planet: %w", err)
	}
	coord, err := galaxy.Parse(res.Claim.Key)
	if err != nil {
		return nil, fmt.Errorf("assigning home planet: %w", err)
	}

	now := s.now().UTC()
	st := s.newState(playerID, coord, req, now)
	data, err := st.Encode()
	if err != nil {
		return nil, err
	}

	result, err := s.store.TransactionalUpdate(ctx, repository.PlanetPath(playerID), func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, repository.ErrAbort
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating planet: %w", err)
	}
	if !result.Committed {
		s.logger.Warn("home planet raced, coordinate left claimed", "player", playerID, "coordinate", coord.String())
		return nil, ErrAlreadyAssigned
	}

	s.logger.Info("home planet assigned", "player", playerID, "coordinate", coord.String(), "archetype", st.Archetype)
	return st, nil
}

func (s *Service) newState(playerID string, coord galaxy.Coordinate, req AssignRequest, now time.Time) *State {
	archetype := req.Archetype
	if archetype == "" {
		all := economy.Archetypes()
		s.mu.Lock()
		archetype = all[s.rng.IntN(len(all))]
		s.mu.Unlock()
	}

	st := &State{
		PlayerID:   playerID,
		Coordinate: coord,
		Archetype:  archetype,
		Resources:  s.starter.Resources,
		Buildings:  economy.Levels{},
		Research:   map[ResearchKind]int{},
		Fleet:      map[flight.ShipKind]Ships{},
		IsBot:      req.IsBot,
		LastTick:   now,
		CreatedAt:  now,
	}
	for kind, level := range s.starter.Buildings {
		st.Buildings[kind] = level
	}
	for kind, level := range s.starter.Research {
		st.Research[kind] = level
	}
	st.Grant(s.starter.Fleet)
	st.Grant(req.Ships)
	return st
}

// ReserveName claims a globally unique display name for the player.
// Claimed names stay claimed even after a rename.
func (s *Service) ReserveName(ctx context.Context, playerID, name string) (*State, error) {
	name = strings.TrimSpace(name)
	if _, err := s.Get(ctx, playerID); err != nil {
		return nil, err
	}

	res, err := s.alloc.Claim(ctx, allocation.NamespaceNames, name, allocation.Claim{OwnerID: playerID})
	if err != nil {
		if errors.Is(err, allocation.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("reserving name: %w", err)
	}
	if !res.Committed && res.Claim.OwnerID != playerID {
		return nil, ErrNameTaken
	}

	return s.Update(ctx, playerID, func(st *State) error {
		st.Name = name
		return nil
	})
}

// FoundColony claims c for ownerID and records it on the owner's planet.
// It reports false when the coordinate was already taken.
func (s *Service) FoundColony(ctx context.Context, ownerID string, c galaxy.Coordinate) (bool, error) {
	res, err := s.alloc.Claim(ctx, allocation.NamespaceCoordinates, c.String(),
		allocation.Claim{OwnerID: ownerID, Payload: json.RawMessage(`{"kind":"colony"}`)})
	if err != nil {
		return false, fmt.Errorf("claiming colony: %w", err)
	}
	if !res.Committed {
		return false, nil
	}

	if _, err := s.Update(ctx, ownerID, func(st *State) error {
		if !st.HasColony(c) {
			st.Colonies = append(st.Colonies, c)
		}
		return nil
	}); err != nil {
		return true, err
	}
	s.logger.Info("colony founded", "player", ownerID, "coordinate", c.String())
	return true, nil
}

// Occupant returns the id of the player holding c, home planet or colony.
func (s *Service) Occupant(ctx context.Context, c galaxy.Coordinate) (string, bool, error) {
	claim, ok, err := s.alloc.Lookup(ctx, allocation.NamespaceCoordinates, c.String())
	if err != nil || !ok {
		return "", false, err
	}
	return claim.OwnerID, true, nil
}

// FindByCoordinate returns the planet occupying c. A colony coordinate
// resolves to its owner's home planet.
func (s *Service) FindByCoordinate(ctx context.Context, c galaxy.Coordinate) (*State, bool, error) {
	owner, ok, err := s.Occupant(ctx, c)
	if err != nil || !ok {
		return nil, false, err
	}
	st, err := s.Get(ctx, owner)
	if errors.Is(err, ErrPlanetNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

// ListPlayers returns the ids of every player with a planet.
func (s *Service) ListPlayers(ctx context.Context) ([]string, error) {
	keys, err := s.store.Keys(ctx, repository.PlayersPrefix())
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	var ids []string
	for _, key := range keys {
		if id, ok := repository.PlayerIDFromPlanetPath(key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func validatePlayerID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, "/ ") {
		return fmt.Errorf("%w: player id %q", ErrInvalidInput, id)
	}
	return nil
}
