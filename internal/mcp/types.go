package mcp

import (
	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/mission"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
)

type GetPlanetParams struct{}

type ListMissionsParams struct{}

type ListReportsParams struct {
	Page int `json:"page,omitempty" jsonschema:"1-based page number, 10 reports per page"`
}

type PreviewFlightParams struct {
	Target string         `json:"target" jsonschema:"target coordinate as system:slot"`
	Ships  map[string]int `json:"ships" jsonschema:"ship kind to count"`
}

type ResourcesParams struct {
	Metal     float64 `json:"metal,omitempty"`
	Crystal   float64 `json:"crystal,omitempty"`
	Deuterium float64 `json:"deuterium,omitempty"`
}

type DispatchMissionParams struct {
	Kind      string           `json:"kind" jsonschema:"spy, transport, donation or colonize"`
	Target    string           `json:"target" jsonschema:"target coordinate as system:slot"`
	Ships     map[string]int   `json:"ships" jsonschema:"ship kind to count"`
	Resources *ResourcesParams `json:"resources,omitempty" jsonschema:"cargo for transport and donation missions"`
}

type CancelMissionParams struct {
	ID string `json:"id" jsonschema:"mission id"`
}

type MarkReportReadParams struct {
	ID string `json:"id" jsonschema:"report id"`
}

type ClearReportsParams struct{}

type AssignHomePlanetParams struct {
	Archetype string `json:"archetype,omitempty" jsonschema:"balanced, metal_rich, crystal_rich or gas_giant"`
}

type ReserveNameParams struct {
	Name string `json:"name" jsonschema:"planet name, unique across the galaxy"`
}

// PlanetResponse is the reconciled planet plus derived figures.
type PlanetResponse struct {
	Planet       *planet.State     `json:"planet"`
	Energy       float64           `json:"energy"`
	Capacity     economy.Resources `json:"capacity"`
	MissionSlots int               `json:"mission_slots"`
}

type MissionListResponse struct {
	Missions []mission.Mission `json:"missions"`
	Count    int               `json:"count"`
}

type MissionResponse struct {
	Mission *mission.Mission `json:"mission"`
}

// PreviewResponse describes one leg; fuel is charged once for the round trip.
type PreviewResponse struct {
	Distance        float64 `json:"distance"`
	Speed           float64 `json:"speed"`
	DurationSeconds float64 `json:"duration_seconds"`
	Fuel            int64   `json:"fuel"`
	Reserve         int64   `json:"reserve"`
	Cargo           float64 `json:"cargo"`
}

type ReportResponse struct {
	Report *report.Report `json:"report"`
}

type ClearReportsResponse struct {
	Cleared int `json:"cleared"`
}

func previewResponse(p flight.Plan) PreviewResponse {
	return PreviewResponse{
		Distance:        p.Distance,
		Speed:           p.Speed,
		DurationSeconds: p.Duration.Seconds(),
		Fuel:            p.Fuel,
		Reserve:         p.Reserve,
		Cargo:           p.Cargo,
	}
}

func manifest(ships map[string]int) flight.Manifest {
	out := make(flight.Manifest, len(ships))
	for kind, n := range ships {
		out[flight.ShipKind(kind)] = n
	}
	return out
}

func (r *ResourcesParams) resources() economy.Resources {
	if r == nil {
		return economy.Resources{}
	}
	return economy.Resources{Metal: r.Metal, Crystal: r.Crystal, Deuterium: r.Deuterium}
}
