package mission

import (
	"context"
	"fmt"

	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
)

// ColonizeResolver claims the target coordinate for the owner, consuming
// one colony ship on success.
type ColonizeResolver struct {
	Planets Planets
}

func (r *ColonizeResolver) Resolve(ctx context.Context, m Mission, owner *planet.State) (Outcome, error) {
	out := Outcome{Ships: m.Ships.Clone(), Resources: m.Resources}

	ok, err := r.Planets.FoundColony(ctx, m.OwnerID, m.Target)
	if err != nil {
		return Outcome{}, fmt.Errorf("founding colony: %w", err)
	}

	success := ok
	payload := report.Payload{Success: &success}
	if ok {
		out.Ships[flight.ColonyShip]--
		if out.Ships[flight.ColonyShip] <= 0 {
			delete(out.Ships, flight.ColonyShip)
		}
		payload.Message = fmt.Sprintf("colony founded at %s", m.Target)
	} else {
		payload.Message = fmt.Sprintf("%s was claimed before the fleet arrived", m.Target)
	}

	out.Reports = append(out.Reports, report.Report{
		OwnerID:   m.OwnerID,
		Kind:      report.KindColonizeResult,
		MissionID: m.ID,
		Target:    m.Target,
		Payload:   payload,
	})
	return out, nil
}
