package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/sqlite"
)

func TestParseShips(t *testing.T) {
	catalog := flight.DefaultCatalog()

	ships, err := parseShips([]string{"spy_probe=3", " small_cargo = 2", "spy_probe=1"}, catalog)
	require.NoError(t, err)
	require.Equal(t, flight.Manifest{flight.SpyProbe: 4, flight.SmallCargo: 2}, ships)

	for _, bad := range []string{"spy_probe", "warship=1", "spy_probe=-1", "spy_probe=many"} {
		_, err := parseShips([]string{bad}, catalog)
		require.Error(t, err, bad)
	}
}

func TestCommands_PlayerAndKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.db")
	t.Setenv("STARDUST_DB_PATH", path)
	t.Setenv("STARDUST_JOURNAL_DIR", "")

	run := func(args ...string) {
		t.Helper()
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	}

	run("migrate")
	run("players", "add", "dave", "--name", "Vega", "--ship", "colony_ship=1")
	run("keys", "add", "dave-token", "dave", "--description", "ctl test")
	run("planet", "show", "dave")
	run("missions", "list", "dave")
	run("tick")

	db, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	player, err := sqlite.NewAPIKeyRepository(db).ResolveTenant(context.Background(), "dave-token")
	require.NoError(t, err)
	require.Equal(t, "dave", player)

	eng, cleanup, err := openEngine()
	require.NoError(t, err)
	defer cleanup()
	st, err := eng.Planets.Get(context.Background(), "dave")
	require.NoError(t, err)
	require.Equal(t, "Vega", st.Name)
	require.Equal(t, 1, st.Fleet[flight.ColonyShip].Owned)
}
