package mcp

import (
	"context"
	"encoding/json"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools exposes every handler method as an MCP tool. Tool arguments
// are re-encoded and run through Handler.Handle, so both surfaces share
// validation and error mapping.
func registerTools(server *sdkmcp.Server, h *Handler) {
	addTool[GetPlanetParams](server, h, "get_planet",
		"Get your home planet with resources settled to now, energy balance, storage capacity and mission slots")
	addTool[ListMissionsParams](server, h, "list_missions",
		"List your active missions ordered by their next event")
	addTool[ListReportsParams](server, h, "list_reports",
		"List inbox reports, newest first, 10 per page, with total and unread counts")
	addTool[PreviewFlightParams](server, h, "preview_flight",
		"Compute distance, one-way duration, fuel cost and deuterium reservation for a fleet without dispatching it")
	addTool[DispatchMissionParams](server, h, "dispatch_mission",
		"Send a fleet on a spy, transport, donation or colonize mission. Fuel and cargo are debited immediately")
	addTool[CancelMissionParams](server, h, "cancel_mission",
		"Recall an outbound mission before it arrives; cargo and fuel are refunded")
	addTool[MarkReportReadParams](server, h, "mark_report_read",
		"Mark one report as read")
	addTool[ClearReportsParams](server, h, "clear_reports",
		"Delete every report in your inbox")
	addTool[AssignHomePlanetParams](server, h, "assign_home_planet",
		"Claim a free coordinate and create your home planet. Only needed once per player")
	addTool[ReserveNameParams](server, h, "reserve_name",
		"Reserve a unique planet name")
}

func addTool[In any](server *sdkmcp.Server, h *Handler, name, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		params, err := json.Marshal(in)
		if err != nil {
			return nil, nil, err
		}
		out, err := h.Handle(ctx, PlayerID(ctx), name, params)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolResult(out)
	})
}

func toolResult(out any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = &APIError{Code: CodeInternal, Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
