// Command stardustctl administers a stardust database: migrations, players,
// API keys, manual ticks and journal verification.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joaodperes/stardust/internal/config"
	"github.com/joaodperes/stardust/internal/engine"
	"github.com/joaodperes/stardust/internal/journal"
	"github.com/joaodperes/stardust/internal/sqlite"
	"github.com/joaodperes/stardust/internal/tuning"
)

var (
	cfg     config.Config
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "stardustctl",
	Short:         "Administer a stardust galaxy",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if dbPath != "" {
			cfg.DB.Path = dbPath
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides STARDUST_DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

// openDB opens the configured database with migrations applied.
func openDB() (*sqlite.DB, error) {
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.DB.Path, err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// openEngine wires the engine the same way the server does. The returned
// cleanup closes the journal and the database.
func openEngine() (*engine.Engine, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	tun, err := tuning.Load(cfg.Tuning.Path)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	opts := engine.Options{Tuning: tun}
	var jw *journal.Writer
	if cfg.Journal.Dir != "" {
		jw = journal.NewWriter(cfg.Journal.Dir, "missions", nil)
		opts.Journal = jw
	}
	eng := engine.New(sqlite.NewKVStore(db), logger, opts)

	cleanup := func() {
		if jw != nil {
			_ = jw.Close()
		}
		_ = db.Close()
	}
	return eng, cleanup, nil
}
