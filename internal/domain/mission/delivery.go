package mission

import (
	"context"
	"fmt"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
)

// DeliveryResolver unloads cargo at the target planet. With Donate set the
// ships are handed over too. The target is credited when the outcome settles.
type DeliveryResolver struct {
	Planets Planets
	Donate  bool
}

func (r *DeliveryResolver) Resolve(ctx context.Context, m Mission, owner *planet.State) (Outcome, error) {
	out := Outcome{Ships: m.Ships.Clone(), Resources: m.Resources}

	recipient, found, err := r.Planets.Occupant(ctx, m.Target)
	if err != nil {
		return Outcome{}, fmt.Errorf("looking up target: %w", err)
	}
	if !found {
		out.Reports = append(out.Reports, r.receipt(m, m.OwnerID, "no planet at target, cargo returning", nil, nil))
		return out, nil
	}

	var ships flight.Manifest
	if r.Donate {
		ships = m.Ships.Clone()
	}
	delivered := m.Resources
	out.Credits = append(out.Credits, Credit{PlayerID: recipient, Resources: delivered, Ships: ships})

	out.Resources = economy.Resources{}
	if r.Donate {
		out.Ships = flight.Manifest{}
	}

	msg := "cargo delivered"
	if r.Donate {
		msg = "fleet and cargo donated"
	}
	out.Reports = append(out.Reports, r.receipt(m, m.OwnerID, msg, &delivered, ships))
	if recipient != m.OwnerID {
		incoming := r.receipt(m, recipient, msg, &delivered, ships)
		incoming.Target = m.Origin
		incoming.Payload.TargetPlayer = m.OwnerID
		out.Reports = append(out.Reports, incoming)
	}
	return out, nil
}

func (r *DeliveryResolver) receipt(m Mission, ownerID, msg string, delivered *economy.Resources, ships flight.Manifest) report.Report {
	kind := report.KindTransportReceipt
	if r.Donate {
		kind = report.KindDonationReceipt
	}
	return report.Report{
		OwnerID:   ownerID,
		Kind:      kind,
		MissionID: m.ID,
		Target:    m.Target,
		Payload: report.Payload{
			Message:   msg,
			Delivered: delivered,
			Ships:     ships,
		},
	}
}
