package mission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
	"github.com/joaodperes/stardust/internal/repository"
)

// errSkip means another driver already moved the mission on.
var errSkip = errors.New("mission advanced elsewhere")

// ProcessActiveMissions advances every due mission of one player. Missions
// are handled one at a time; a failure is logged and counted, and the pass
// moves on.
func (s *Service) ProcessActiveMissions(ctx context.Context, playerID string) (Summary, error) {
	var summary Summary

	missions, err := s.ListActive(ctx, playerID)
	if err != nil {
		return summary, err
	}

	for i := range missions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		m := missions[i]
		if err := s.advance(ctx, &m, &summary); err != nil {
			summary.Failed++
			s.logger.Error("mission processing failed",
				"player", playerID, "mission", m.ID, "state", m.State, "error", err)
		}
	}
	return summary, nil
}

// advance moves m through every transition already due. An arrival whose
// return is also due completes in the same call.
func (s *Service) advance(ctx context.Context, m *Mission, summary *Summary) error {
	for {
		now := s.now().UTC()
		switch m.State {
		case StateOutbound:
			if now.Before(m.ArrivalTime) {
				return nil
			}
			if err := s.arrive(ctx, m, summary); err != nil {
				if errors.Is(err, errSkip) {
					return nil
				}
				return err
			}
			if m.State == StateDestroyed {
				return nil
			}
		case StateResolving:
			if now.Sub(m.ResolvingSince) < s.lease {
				return nil
			}
			if err := s.forceReturn(ctx, m, now); err != nil {
				if errors.Is(err, errSkip) {
					return nil
				}
				return err
			}
		case StateReturning:
			if now.Before(m.ReturnTime) {
				return nil
			}
			if err := s.complete(ctx, m); err != nil {
				if errors.Is(err, errSkip) {
					return nil
				}
				return err
			}
			summary.Returned++
			return nil
		default:
			return fmt.Errorf("%w: mission %s in state %s", ErrInvalidTransition, m.ID, m.State)
		}
	}
}

// arrive claims the mission with an OUTBOUND to RESOLVING swap, runs the
// resolver and settles the outcome.
func (s *Service) arrive(ctx context.Context, m *Mission, summary *Summary) error {
	path := repository.MissionPath(m.OwnerID, m.ID)
	claimedAt := s.now().UTC()

	res, err := s.store.TransactionalUpdate(ctx, path, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, repository.ErrAbort
		}
		cur, err := decodeMission(current)
		if err != nil {
			return nil, err
		}
		if ValidateTransition(cur.State, StateResolving) != nil {
			return nil, repository.ErrAbort
		}
		cur.State = StateResolving
		cur.ResolvingSince = claimedAt
		*m = *cur
		return cur.encode()
	})
	if err != nil {
		return fmt.Errorf("claiming arrival: %w", err)
	}
	if !res.Committed {
		return errSkip
	}
	summary.Arrived++

	owner, err := s.planets.Get(ctx, m.OwnerID)
	if err != nil {
		return fmt.Errorf("loading owner: %w", err)
	}

	outcome, rerr := s.resolve(ctx, *m, owner)
	if rerr != nil {
		summary.Failed++
		s.logger.Warn("mission resolution failed", "player", m.OwnerID, "mission", m.ID, "kind", m.Kind, "error", rerr)
		m.LastError = rerr.Error()
		outcome = Outcome{
			Ships:     m.Ships.Clone(),
			Resources: m.Resources,
			Reports: []report.Report{{
				OwnerID:   m.OwnerID,
				Kind:      report.KindResolutionFailed,
				MissionID: m.ID,
				Target:    m.Target,
				Payload:   report.Payload{Message: "mission could not be resolved, fleet returning"},
			}},
		}
		s.record("resolution_failed", m, map[string]any{"error": rerr.Error()})
	}

	if err := s.settle(ctx, m, outcome, owner.ResearchLevel(planet.CombustionDrive)); err != nil {
		return err
	}
	if m.State == StateDestroyed {
		summary.Destroyed++
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, m Mission, owner *planet.State) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{}
			err = &ResolutionError{MissionID: m.ID, Kind: m.Kind, Err: fmt.Errorf("resolver panic: %v", r)}
		}
	}()

	resolver, ok := s.registry.Get(m.Kind)
	if !ok {
		return Outcome{}, &ResolutionError{MissionID: m.ID, Kind: m.Kind, Err: ErrNoResolver}
	}
	outcome, err := resolver.Resolve(ctx, m, owner)
	if err != nil {
		return Outcome{}, &ResolutionError{MissionID: m.ID, Kind: m.Kind, Err: err}
	}
	if outcome.Ships == nil {
		outcome.Ships = flight.Manifest{}
	}
	return outcome, nil
}

// settle applies an outcome: losses leave the owner's fleet and credits
// reach their planets in the same transaction that turns the mission home
// or deletes it. The return leg departs at the logical arrival time, not
// the processing time, so a late tick never delays the fleet.
func (s *Service) settle(ctx context.Context, m *Mission, outcome Outcome, driveLevel int) error {
	survivors := outcome.Ships.Clone()
	losses := m.Ships.Losses(survivors)
	path := repository.MissionPath(m.OwnerID, m.ID)

	next := *m
	next.Ships = survivors
	next.Resources = outcome.Resources
	next.WasDetected = outcome.Detected
	next.ResolvingSince = time.Time{}

	if survivors.Total() == 0 {
		next.State = StateDestroyed
	} else {
		speed, err := s.catalog.FleetSpeed(survivors)
		if err != nil {
			return fmt.Errorf("return speed: %w", err)
		}
		speed *= flight.SpeedMultiplier(driveLevel)
		next.State = StateReturning
		next.DepartureTime = m.ArrivalTime
		next.ReturnTime = m.ArrivalTime.Add(flight.FlightTime(m.Distance, speed))
	}
	if err := ValidateTransition(m.State, next.State); err != nil {
		return err
	}

	err := s.store.Atomic(ctx, func(txn repository.Txn) error {
		data, err := txn.Get(ctx, path)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errSkip
			}
			return err
		}
		cur, err := decodeMission(data)
		if err != nil {
			return err
		}
		if cur.State != StateResolving || !cur.ResolvingSince.Equal(m.ResolvingSince) {
			return errSkip
		}

		now := s.now().UTC()
		states := map[string]*planet.State{}
		var order []string
		load := func(playerID string) (*planet.State, error) {
			if st, ok := states[playerID]; ok {
				return st, nil
			}
			st, err := s.planets.Load(ctx, txn, playerID, now)
			if err != nil {
				return nil, err
			}
			states[playerID] = st
			order = append(order, playerID)
			return st, nil
		}

		if losses.Total() > 0 {
			st, err := load(m.OwnerID)
			if err != nil {
				return err
			}
			st.Lose(losses)
		}
		for _, c := range outcome.Credits {
			st, err := load(c.PlayerID)
			if err != nil {
				return fmt.Errorf("crediting %s: %w", c.PlayerID, err)
			}
			st.Credit(c.Resources)
			st.Grant(c.Ships)
		}
		for _, id := range order {
			if err := planet.Save(txn, states[id]); err != nil {
				return err
			}
		}

		reports := outcome.Reports
		if next.State == StateDestroyed {
			txn.Delete(path)
			if outcome.Lost {
				reports = append(reports, report.Report{
					OwnerID:   m.OwnerID,
					Kind:      report.KindFleetLost,
					MissionID: m.ID,
					Target:    m.Target,
					Payload:   report.Payload{Message: "no ships survived the mission", Ships: losses},
				})
			}
		} else {
			encoded, err := next.encode()
			if err != nil {
				return err
			}
			txn.Put(path, encoded)
		}

		for _, r := range reports {
			if _, err := s.reports.Stage(txn, r); err != nil {
				return fmt.Errorf("staging report: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	*m = next
	if m.State == StateDestroyed {
		s.logger.Info("mission ended at target", "player", m.OwnerID, "mission", m.ID, "kind", m.Kind, "lost", outcome.Lost)
		s.record("destroy", m, map[string]any{"lost": losses, "ships_lost": outcome.Lost})
		return nil
	}
	s.logger.Info("mission resolved", "player", m.OwnerID, "mission", m.ID, "kind", m.Kind, "return", m.ReturnTime)
	s.record("arrive", m, map[string]any{"survivors": survivors, "detected": outcome.Detected, "return": m.ReturnTime})
	return nil
}

// forceReturn sends home a mission whose resolver never finished.
func (s *Service) forceReturn(ctx context.Context, m *Mission, now time.Time) error {
	owner, err := s.planets.Get(ctx, m.OwnerID)
	if err != nil {
		return fmt.Errorf("loading owner: %w", err)
	}
	multiplier := flight.SpeedMultiplier(owner.ResearchLevel(planet.CombustionDrive))

	path := repository.MissionPath(m.OwnerID, m.ID)
	res, err := s.store.TransactionalUpdate(ctx, path, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, repository.ErrAbort
		}
		cur, err := decodeMission(current)
		if err != nil {
			return nil, err
		}
		if cur.State != StateResolving || now.Sub(cur.ResolvingSince) < s.lease {
			return nil, repository.ErrAbort
		}
		speed, err := s.catalog.FleetSpeed(cur.Ships)
		if err != nil {
			return nil, err
		}
		speed *= multiplier
		cur.State = StateReturning
		cur.ResolvingSince = time.Time{}
		cur.DepartureTime = now
		cur.ReturnTime = now.Add(flight.FlightTime(cur.Distance, speed))
		cur.LastError = "resolution lease expired"
		*m = *cur
		return cur.encode()
	})
	if err != nil {
		return fmt.Errorf("forcing return: %w", err)
	}
	if !res.Committed {
		return errSkip
	}
	s.logger.Warn("mission stuck resolving, sent home", "player", m.OwnerID, "mission", m.ID)
	s.record("forced_return", m, nil)
	return nil
}

// complete lands a returning fleet: ships become available, cargo joins
// the stock and the mission is deleted.
func (s *Service) complete(ctx context.Context, m *Mission) error {
	path := repository.MissionPath(m.OwnerID, m.ID)
	var landed *Mission

	err := s.store.Atomic(ctx, func(txn repository.Txn) error {
		data, err := txn.Get(ctx, path)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errSkip
			}
			return err
		}
		cur, err := decodeMission(data)
		if err != nil {
			return err
		}
		if cur.State != StateReturning {
			return errSkip
		}

		st, err := s.planets.Load(ctx, txn, cur.OwnerID, s.now().UTC())
		if err != nil {
			return err
		}
		st.Release(cur.Ships)
		st.Credit(cur.Resources)
		if err := planet.Save(txn, st); err != nil {
			return err
		}
		txn.Delete(path)
		landed = cur
		return nil
	})
	if err != nil {
		return err
	}

	landed.State = StateCompleted
	*m = *landed
	s.logger.Info("mission returned", "player", m.OwnerID, "mission", m.ID, "kind", m.Kind)
	s.record("return", m, map[string]any{"ships": m.Ships, "resources": m.Resources})
	return nil
}
