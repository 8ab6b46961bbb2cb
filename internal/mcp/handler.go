package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/domain/mission"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
)

// PlanetService defines planet operations needed by the API.
type PlanetService interface {
	Get(ctx context.Context, playerID string) (*planet.State, error)
	Energy(st *planet.State) float64
	Capacity(st *planet.State) economy.Resources
	AssignHomePlanet(ctx context.Context, playerID string, req planet.AssignRequest) (*planet.State, error)
	ReserveName(ctx context.Context, playerID, name string) (*planet.State, error)
}

// MissionService defines mission operations needed by the API.
type MissionService interface {
	MaxActive(st *planet.State) int
	Preview(ctx context.Context, playerID string, target galaxy.Coordinate, ships flight.Manifest) (flight.Plan, error)
	Dispatch(ctx context.Context, playerID string, req mission.DispatchRequest) (*mission.Mission, error)
	Cancel(ctx context.Context, playerID, missionID string) (*mission.Mission, error)
	ListActive(ctx context.Context, playerID string) ([]mission.Mission, error)
}

// ReportService defines inbox operations needed by the API.
type ReportService interface {
	List(ctx context.Context, playerID string, page int) (*report.Page, error)
	MarkRead(ctx context.Context, playerID, id string) (*report.Report, error)
	ClearAll(ctx context.Context, playerID string) (int, error)
}

// Services contains all domain services needed by the API.
type Services struct {
	Planets  PlanetService
	Missions MissionService
	Reports  ReportService
}

// Methods lists every command and query, in the order tools are registered.
var Methods = []string{
	"get_planet",
	"list_missions",
	"list_reports",
	"preview_flight",
	"dispatch_mission",
	"cancel_mission",
	"mark_report_read",
	"clear_reports",
	"assign_home_planet",
	"reserve_name",
}

// Handler dispatches commands and queries for one player.
type Handler struct {
	planets  PlanetService
	missions MissionService
	reports  ReportService
	schemas  paramSchemas
	logger   *slog.Logger
}

// NewHandler creates a new handler. Params are validated against the
// embedded JSON schemas before they reach a service.
func NewHandler(services Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		planets:  services.Planets,
		missions: services.Missions,
		reports:  services.Reports,
		schemas:  mustCompileSchemas(),
		logger:   logger,
	}
}

// Handle dispatches method for playerID. Errors the API understands come
// back as *APIError.
func (h *Handler) Handle(ctx context.Context, playerID, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, playerID, method, params)
	if err != nil && MapError(err) == nil {
		h.logger.Error("request failed", "method", method, "player_id", playerID, "error", err)
	}
	return result, err
}

func (h *Handler) dispatch(ctx context.Context, playerID, method string, params json.RawMessage) (any, error) {
	if playerID == "" {
		return nil, &APIError{Code: CodeUnauthorized, Message: "no player bound to request"}
	}
	if err := h.schemas.validate(method, params); err != nil {
		return nil, err
	}

	switch method {
	case "get_planet":
		st, err := h.planets.Get(ctx, playerID)
		if err != nil {
			return nil, mapError(err)
		}
		return h.planetResponse(st), nil
	case "list_missions":
		missions, err := h.missions.ListActive(ctx, playerID)
		if err != nil {
			return nil, mapError(err)
		}
		if missions == nil {
			missions = []mission.Mission{}
		}
		return MissionListResponse{Missions: missions, Count: len(missions)}, nil
	case "list_reports":
		var req ListReportsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		page, err := h.reports.List(ctx, playerID, max(req.Page, 1))
		if err != nil {
			return nil, mapError(err)
		}
		return page, nil
	case "preview_flight":
		var req PreviewFlightParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		target, err := galaxy.Parse(req.Target)
		if err != nil {
			return nil, mapError(err)
		}
		plan, err := h.missions.Preview(ctx, playerID, target, manifest(req.Ships))
		if err != nil {
			return nil, mapError(err)
		}
		return previewResponse(plan), nil
	case "dispatch_mission":
		var req DispatchMissionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		target, err := galaxy.Parse(req.Target)
		if err != nil {
			return nil, mapError(err)
		}
		m, err := h.missions.Dispatch(ctx, playerID, mission.DispatchRequest{
			Kind:      mission.Kind(req.Kind),
			Target:    target,
			Ships:     manifest(req.Ships),
			Resources: req.Resources.resources(),
		})
		if err != nil {
			return nil, mapError(err)
		}
		return MissionResponse{Mission: m}, nil
	case "cancel_mission":
		var req CancelMissionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		m, err := h.missions.Cancel(ctx, playerID, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return MissionResponse{Mission: m}, nil
	case "mark_report_read":
		var req MarkReportReadParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		r, err := h.reports.MarkRead(ctx, playerID, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return ReportResponse{Report: r}, nil
	case "clear_reports":
		n, err := h.reports.ClearAll(ctx, playerID)
		if err != nil {
			return nil, mapError(err)
		}
		return ClearReportsResponse{Cleared: n}, nil
	case "assign_home_planet":
		var req AssignHomePlanetParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		st, err := h.planets.AssignHomePlanet(ctx, playerID, planet.AssignRequest{
			Archetype: economy.Archetype(req.Archetype),
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.planetResponse(st), nil
	case "reserve_name":
		var req ReserveNameParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		st, err := h.planets.ReserveName(ctx, playerID, req.Name)
		if err != nil {
			return nil, mapError(err)
		}
		return h.planetResponse(st), nil
	default:
		return nil, &APIError{Code: CodeUnknownMethod, Message: fmt.Sprintf("unknown method: %s", method)}
	}
}

func (h *Handler) planetResponse(st *planet.State) PlanetResponse {
	return PlanetResponse{
		Planet:       st,
		Energy:       h.planets.Energy(st),
		Capacity:     h.planets.Capacity(st),
		MissionSlots: h.missions.MaxActive(st),
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
