package mission

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
)

// Espionage levels that unlock each report tier.
const (
	tierBuildings = 3
	tierFleet     = 6
	tierResearch  = 8
)

// SpyResolver gathers intelligence on the target planet.
type SpyResolver struct {
	Planets Planets
	// Roll returns a uniform value in [0, 1). Nil draws from math/rand/v2.
	Roll func() float64
}

// DetectionChance is the percentage chance probes are spotted:
// (ships/4) * 2^(defender-attacker espionage) * sqrt(probes), within [0, 100].
func DetectionChance(targetShips, targetEspionage, attackerEspionage, probes int) float64 {
	if targetShips <= 0 || probes <= 0 {
		return 0
	}
	chance := float64(targetShips) / 4 *
		math.Pow(2, float64(targetEspionage-attackerEspionage)) *
		math.Sqrt(float64(probes))
	return math.Max(0, math.Min(100, chance))
}

func (r *SpyResolver) Resolve(ctx context.Context, m Mission, owner *planet.State) (Outcome, error) {
	out := Outcome{Ships: m.Ships.Clone(), Resources: m.Resources}

	target, found, err := r.Planets.FindByCoordinate(ctx, m.Target)
	if err != nil || !found {
		// An unreadable target still produces a report.
		out.Reports = append(out.Reports, report.Report{
			OwnerID:   m.OwnerID,
			Kind:      report.KindSpyResult,
			MissionID: m.ID,
			Target:    m.Target,
			Payload:   report.Payload{Message: "no readable planet at target"},
		})
		return out, nil
	}

	attackerLevel := owner.ResearchLevel(planet.Espionage)
	targetShips := target.AvailableShips().Total()
	chance := DetectionChance(targetShips, target.ResearchLevel(planet.Espionage), attackerLevel, m.Ships.Total())
	detected := chance > 0 && r.roll()*100 < chance

	stock := target.Resources.Floor()
	payload := report.Payload{
		TargetPlayer: target.PlayerID,
		TargetName:   target.Name,
		Resources:    &stock,
		WasDetected:  detected,
		Detection:    chance,
	}
	if attackerLevel >= tierBuildings {
		payload.Buildings = economy.Levels{}
		for kind, level := range target.Buildings {
			payload.Buildings[kind] = level
		}
	}
	if attackerLevel >= tierFleet {
		payload.Fleet = target.OwnedShips()
	}
	if attackerLevel >= tierResearch {
		payload.Research = map[planet.ResearchKind]int{}
		for kind, level := range target.Research {
			payload.Research[kind] = level
		}
	}

	out.Reports = append(out.Reports, report.Report{
		OwnerID:   m.OwnerID,
		Kind:      report.KindSpyResult,
		MissionID: m.ID,
		Target:    m.Target,
		Payload:   payload,
	})

	if detected {
		out.Ships = flight.Manifest{}
		out.Lost = true
		out.Detected = true
		if !target.IsBot {
			out.Reports = append(out.Reports, report.Report{
				OwnerID:   target.PlayerID,
				Kind:      report.KindAlert,
				MissionID: m.ID,
				Target:    m.Origin,
				Payload: report.Payload{
					Message:      "espionage probes detected and destroyed",
					TargetPlayer: m.OwnerID,
					Ships:        m.Ships.Clone(),
				},
			})
		}
	}
	return out, nil
}

func (r *SpyResolver) roll() float64 {
	if r.Roll == nil {
		return rand.Float64()
	}
	return r.Roll()
}
