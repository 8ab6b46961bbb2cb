package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/journal"
	"github.com/joaodperes/stardust/internal/sqlite"
	"github.com/joaodperes/stardust/internal/ticker"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Printf("%s migrations applied to %s\n", green("✓"), cfg.DB.Path)
		return nil
	},
}

var (
	playerName      string
	playerBot       bool
	playerArchetype string
	playerShips     []string
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage players",
}

var playersAddCmd = &cobra.Command{
	Use:   "add <player-id>",
	Short: "Assign a home planet to a new player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		ships, err := parseShips(playerShips, eng.Missions.Catalog())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := eng.Planets.AssignHomePlanet(ctx, args[0], planet.AssignRequest{
			IsBot:     playerBot,
			Archetype: economy.Archetype(playerArchetype),
			Ships:     ships,
		})
		if err != nil {
			return err
		}
		if playerName != "" {
			if st, err = eng.Planets.ReserveName(ctx, args[0], playerName); err != nil {
				return err
			}
		}
		fmt.Printf("%s %s settled at %s\n", green("✓"), st.PlayerID, st.Coordinate)
		return nil
	},
}

var planetCmd = &cobra.Command{
	Use:   "planet",
	Short: "Inspect planets",
}

var planetShowCmd = &cobra.Command{
	Use:   "show <player-id>",
	Short: "Show a player's home planet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		st, err := eng.Planets.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printPlanet(os.Stdout, st, eng.Planets.Energy(st), eng.Planets.Capacity(st))
		return nil
	},
}

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "Inspect missions",
}

var missionsListCmd = &cobra.Command{
	Use:   "list <player-id>",
	Short: "List a player's active missions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		missions, err := eng.Missions.ListActive(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printMissions(os.Stdout, missions, time.Now())
		return nil
	},
}

var tickWatch bool

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Process due missions for every player",
	Long: `Run one processing pass over every player's missions.
With --watch the pass repeats on the configured tick interval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		driver := eng.Driver(ticker.Config{Interval: cfg.Ticker.Interval, Workers: cfg.Ticker.Workers})
		if tickWatch {
			fmt.Printf("%s every %v, Ctrl+C to stop\n", cyan("Ticking"), cfg.Ticker.Interval)
			return driver.Run(cmd.Context())
		}
		summary, err := driver.Tick(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("arrived %d, returned %d, destroyed %d, failed %s\n",
			summary.Arrived, summary.Returned, summary.Destroyed, failedCount(summary.Failed))
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
}

var keyDescription string

var keysAddCmd = &cobra.Command{
	Use:   "add <token> <player-id>",
	Short: "Authorize a bearer token for a player",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqlite.NewAPIKeyRepository(db).Add(cmd.Context(), args[0], args[1], keyDescription); err != nil {
			return err
		}
		fmt.Printf("%s key added for %s\n", green("✓"), args[1])
		return nil
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect mission journals",
}

var journalVerifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Check the hash chain of journal files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, path := range args {
			n, err := journal.Verify(path)
			if err != nil {
				failed++
				fmt.Printf("%s %s: %v\n", red("✗"), path, err)
				continue
			}
			fmt.Printf("%s %s: %d events\n", green("✓"), path, n)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d journals failed verification", failed, len(args))
		}
		return nil
	},
}

func init() {
	playersAddCmd.Flags().StringVar(&playerName, "name", "", "reserve a planet name")
	playersAddCmd.Flags().BoolVar(&playerBot, "bot", false, "mark the player as a bot")
	playersAddCmd.Flags().StringVar(&playerArchetype, "archetype", "", "planet archetype (balanced, metal_rich, crystal_rich, gas_giant)")
	playersAddCmd.Flags().StringArrayVar(&playerShips, "ship", nil, "extra ships as kind=count, repeatable")
	playersCmd.AddCommand(playersAddCmd)

	planetCmd.AddCommand(planetShowCmd)
	missionsCmd.AddCommand(missionsListCmd)

	tickCmd.Flags().BoolVar(&tickWatch, "watch", false, "keep ticking until interrupted")

	keysAddCmd.Flags().StringVar(&keyDescription, "description", "", "note stored with the key")
	keysCmd.AddCommand(keysAddCmd)

	journalCmd.AddCommand(journalVerifyCmd)

	rootCmd.AddCommand(migrateCmd, playersCmd, planetCmd, missionsCmd, tickCmd, keysCmd, journalCmd)
}

// parseShips reads kind=count pairs. Kinds must exist in catalog.
func parseShips(specs []string, catalog flight.Catalog) (flight.Manifest, error) {
	ships := flight.Manifest{}
	for _, spec := range specs {
		kind, count, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("ship %q: want kind=count", spec)
		}
		k := flight.ShipKind(strings.TrimSpace(kind))
		if _, known := catalog[k]; !known {
			return nil, fmt.Errorf("ship %q: unknown kind", spec)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("ship %q: count must be a non-negative integer", spec)
		}
		ships[k] += n
	}
	return ships, nil
}

func failedCount(n int) string {
	if n > 0 {
		return red(strconv.Itoa(n))
	}
	return strconv.Itoa(n)
}
