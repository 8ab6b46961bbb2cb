package tuning_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/tuning"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	tun := tuning.Defaults()
	require.NoError(t, tun.Validate())

	model := tun.Model()
	require.Equal(t, economy.DefaultModel().CatchUp, model.CatchUp)
	require.Equal(t, 10, tun.Missions.MaxSlots)
	require.Equal(t, 2*time.Minute, tun.Missions.ResolvingLease)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	tun, err := tuning.Load("")
	require.NoError(t, err)
	require.Equal(t, tuning.Defaults().Missions, tun.Missions)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	content := `
economy:
  catch_up_hours: 48
  producers:
    metal_mine:
      resource: metal
      growth: compounding
      base: 60
      scaling: 1.1
      efficiency: 1
      energy_use: 10
      energy_scaling: 1.25
ships:
  small_cargo:
    class: cargo
    speed: 20
    consumption: 10
    cargo: 5000
missions:
  max_mission_slots: 4
  resolving_lease: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tun, err := tuning.Load(path)
	require.NoError(t, err)

	require.Equal(t, 48*time.Hour, tun.Model().CatchUp)
	require.Equal(t, 60.0, tun.Economy.Producers[economy.MetalMine].Base)
	require.Equal(t, 1.25, tun.Economy.Producers[economy.MetalMine].EnergyScaling)
	require.Contains(t, tun.Economy.Producers, economy.CrystalMine)
	require.Equal(t, 20.0, tun.Ships[flight.SmallCargo].Speed)
	require.Equal(t, 100.0, tun.Ships[flight.SpyProbe].Speed)
	require.Equal(t, 4, tun.Missions.MaxSlots)
	require.Equal(t, 30*time.Second, tun.Missions.ResolvingLease)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ships:\n  spy_probe:\n    speed: 0\n"), 0o644))

	_, err := tuning.Load(path)
	require.ErrorContains(t, err, "ships.spy_probe.speed must be positive")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := tuning.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
