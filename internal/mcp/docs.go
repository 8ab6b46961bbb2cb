package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `stardust runs a persistent galaxy: every player owns one home planet that produces metal, crystal and deuterium over time, and sends fleets on missions to other coordinates.

Core concepts:
- Planet: resources, buildings, research and a fleet. Resources are settled lazily from elapsed time whenever the planet is read or written.
- Coordinate: "system:slot", systems 1-100 and slots 1-15. Each coordinate holds at most one planet.
- Mission: a fleet in flight. OUTBOUND until arrival, then resolved once, then RETURNING (or DESTROYED when no ship survives).
- Report: an inbox entry produced by mission resolution (spy results, receipts, alerts, losses).

Default workflow:
1) get_planet. If it fails with PLANET_NOT_FOUND call assign_home_planet once.
2) preview_flight to see distance, duration and the deuterium reservation before committing.
3) dispatch_mission(kind, target, ships, resources). Fuel is charged up front for the round trip.
4) list_missions to watch arrivals, list_reports for results. cancel_mission only works while OUTBOUND.

Docs:
- stardust://docs/index
- stardust://docs/economy
- stardust://docs/missions
- stardust://docs/reports
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "stardust://docs/index",
		Name:        "docs_index",
		Title:       "stardust docs index",
		Description: "Entry point: available tools and which doc to read for each topic.",
		Content: `# stardust: docs index

## Tools

Queries:
- ` + "`get_planet`" + `: reconciled planet, energy balance, storage capacity, mission slots.
- ` + "`list_missions`" + `: active missions ordered by their next event.
- ` + "`list_reports`" + `: inbox, 10 per page, newest first, with total and unread counts.
- ` + "`preview_flight`" + `: distance, one-way duration, fuel and reservation for a fleet.

Commands:
- ` + "`assign_home_planet`" + `, ` + "`reserve_name`" + `
- ` + "`dispatch_mission`" + `, ` + "`cancel_mission`" + `
- ` + "`mark_report_read`" + `, ` + "`clear_reports`" + `

## Read on demand

- ` + "`stardust://docs/economy`" + `: production, storage and energy.
- ` + "`stardust://docs/missions`" + `: mission kinds, fuel, lifecycle and cancellation.
- ` + "`stardust://docs/reports`" + `: report kinds and what each payload carries.
`,
	},
	{
		URI:         "stardust://docs/economy",
		Name:        "docs_economy",
		Title:       "Economy",
		Description: "How production accrues, how storage caps it, and how energy throttles it.",
		Content: `# Economy

- Mines produce per hour. Metal and crystal mines grow by 10% per level on top of the level itself.
- Production is settled from the last settlement time whenever the planet is touched. At most 168 hours (one week) are credited at once.
- Storage buildings raise the cap per resource. Production stops at the cap; deliveries may exceed it.
- Solar plants supply energy. A negative balance cuts all production to the low-power factor.
- The planet archetype multiplies production of one resource.
`,
	},
	{
		URI:         "stardust://docs/missions",
		Name:        "docs_missions",
		Title:       "Missions",
		Description: "Mission kinds, ship restrictions, fuel rules and the mission lifecycle.",
		Content: `# Missions

## Kinds

- ` + "`spy`" + `: spy probes only. Reveals resources, then buildings, fleet and research as your espionage level rises. Probes can be detected and destroyed.
- ` + "`transport`" + `: cargo ships deliver resources to any planet and fly home empty.
- ` + "`donation`" + `: cargo ships and their load are handed over to the target owner. Nothing returns.
- ` + "`colonize`" + `: a colony ship founds a colony on an empty coordinate.

## Flight

- Distance within a system: 1000 + 5 per slot. Across systems: 2700 + 2000 per system.
- The slowest ship sets the fleet speed. Combustion drive research adds 10% per level.
- Fuel is charged once at dispatch; the planet must hold 2.1x the fuel as a reservation.

## Lifecycle

` + "`OUTBOUND -> RESOLVING -> RETURNING -> COMPLETED`" + `, or ` + "`RESOLVING -> DESTROYED`" + ` when no ship survives.
Each mission is resolved exactly once. Missions are processed by the server tick; no call is needed.

## Cancelling

` + "`cancel_mission`" + ` refunds cargo and fuel and returns the ships immediately, but only before arrival.
`,
	},
	{
		URI:         "stardust://docs/reports",
		Name:        "docs_reports",
		Title:       "Reports",
		Description: "Report kinds in the inbox and the payload fields each one fills.",
		Content: `# Reports

| kind | sent to | payload |
|---|---|---|
| ` + "`spy_result`" + ` | attacker | resources, buildings, fleet, research by tier; was_detected, detection chance |
| ` + "`alert`" + ` | target | message naming the detected spy |
| ` + "`transport_receipt`" + ` | sender and recipient | delivered resources |
| ` + "`donation_receipt`" + ` | sender and recipient | delivered resources and ships |
| ` + "`colonize_result`" + ` | owner | success flag |
| ` + "`fleet_lost`" + ` | owner | ships lost |
| ` + "`resolution_failed`" + ` | owner | message; the fleet still returns |

Reports are listed newest first. ` + "`clear_reports`" + ` deletes the whole inbox.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
