package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/mission"
	"github.com/joaodperes/stardust/internal/domain/planet"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func printPlanet(w io.Writer, st *planet.State, energy float64, capacity economy.Resources) {
	name := st.Name
	if name == "" {
		name = gray("(unnamed)")
	}
	fmt.Fprintf(w, "%s %s\n", cyan("Planet"), name)
	fmt.Fprintf(w, "  Owner:      %s\n", st.PlayerID)
	fmt.Fprintf(w, "  Coordinate: %s\n", st.Coordinate)
	fmt.Fprintf(w, "  Archetype:  %s\n", st.Archetype)
	if st.IsBot {
		fmt.Fprintf(w, "  Bot:        %s\n", yellow("yes"))
	}
	fmt.Fprintf(w, "  Energy:     %.0f\n", energy)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", yellow("Resources:"))
	fmt.Fprintf(w, "  metal      %10.0f / %.0f\n", st.Resources.Metal, capacity.Metal)
	fmt.Fprintf(w, "  crystal    %10.0f / %.0f\n", st.Resources.Crystal, capacity.Crystal)
	fmt.Fprintf(w, "  deuterium  %10.0f / %.0f\n", st.Resources.Deuterium, capacity.Deuterium)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", yellow("Fleet:"))
	kinds := make([]string, 0, len(st.Fleet))
	for kind := range st.Fleet {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	if len(kinds) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("no ships"))
	}
	for _, kind := range kinds {
		ships := st.Fleet[flight.ShipKind(kind)]
		fmt.Fprintf(w, "  %-14s %d owned, %d available\n", kind, ships.Owned, ships.Available)
	}
	if len(st.Colonies) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", yellow("Colonies:"))
		for _, c := range st.Colonies {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
}

func printMissions(w io.Writer, missions []mission.Mission, now time.Time) {
	if len(missions) == 0 {
		fmt.Fprintf(w, "%s\n", gray("No active missions"))
		return
	}
	for _, m := range missions {
		next := m.ArrivalTime
		if m.State == mission.StateReturning {
			next = m.ReturnTime
		}
		state := green(string(m.State))
		if m.LastError != "" {
			state = red(string(m.State))
		}
		fmt.Fprintf(w, "%s %s %s -> %s\n", state, m.Kind, m.Origin, m.Target)
		fmt.Fprintf(w, "    ID:    %s\n", m.ID)
		fmt.Fprintf(w, "    Ships: %d (fuel %d)\n", m.Ships.Total(), m.Fuel)
		fmt.Fprintf(w, "    Next:  %s (in %v)\n", next.Format(time.DateTime), next.Sub(now).Round(time.Second))
		if m.LastError != "" {
			fmt.Fprintf(w, "    Error: %s\n", m.LastError)
		}
	}
}
