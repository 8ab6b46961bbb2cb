// Package tuning holds the game constants an operator may override from a
// YAML file.
package tuning

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/mission"
	"github.com/joaodperes/stardust/internal/domain/planet"
)

type Tuning struct {
	Economy  Economy        `yaml:"economy"`
	Ships    flight.Catalog `yaml:"ships"`
	Missions Missions       `yaml:"missions"`
	Starter  planet.Starter `yaml:"starter"`
}

type Economy struct {
	Producers      map[economy.BuildingKind]economy.Producer   `yaml:"producers"`
	PowerPlants    map[economy.BuildingKind]economy.PowerPlant `yaml:"power_plants"`
	StorageBase    float64                                     `yaml:"storage_base"`
	LowPowerFactor float64                                     `yaml:"low_power_factor"`
	CatchUpHours   float64                                     `yaml:"catch_up_hours"`
}

type Missions struct {
	MaxSlots       int           `yaml:"max_mission_slots"`
	ResolvingLease time.Duration `yaml:"resolving_lease"`
}

// Defaults returns the built-in tuning.
func Defaults() Tuning {
	model := economy.DefaultModel()
	return Tuning{
		Economy: Economy{
			Producers:      model.Producers,
			PowerPlants:    model.PowerPlants,
			StorageBase:    model.StorageBase,
			LowPowerFactor: model.LowPowerFactor,
			CatchUpHours:   model.CatchUp.Hours(),
		},
		Ships: flight.DefaultCatalog(),
		Missions: Missions{
			MaxSlots:       mission.DefaultMaxSlots,
			ResolvingLease: mission.DefaultResolvingLease,
		},
		Starter: planet.DefaultStarter(),
	}
}

// Load overlays the YAML file at path on the defaults. Map entries merge
// by key, so a file may override a single ship or producer.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects values the engine cannot run with.
func (t Tuning) Validate() error {
	var errs []error
	if t.Economy.StorageBase <= 0 {
		errs = append(errs, errors.New("economy.storage_base must be positive"))
	}
	if t.Economy.LowPowerFactor < 0 || t.Economy.LowPowerFactor > 1 {
		errs = append(errs, errors.New("economy.low_power_factor must be within [0, 1]"))
	}
	if t.Economy.CatchUpHours <= 0 {
		errs = append(errs, errors.New("economy.catch_up_hours must be positive"))
	}
	for kind, spec := range t.Ships {
		if spec.Speed <= 0 {
			errs = append(errs, fmt.Errorf("ships.%s.speed must be positive", kind))
		}
		if spec.Consumption < 0 || spec.Cargo < 0 {
			errs = append(errs, fmt.Errorf("ships.%s has negative consumption or cargo", kind))
		}
	}
	if t.Missions.MaxSlots <= 0 {
		errs = append(errs, errors.New("missions.max_mission_slots must be positive"))
	}
	if t.Missions.ResolvingLease <= 0 {
		errs = append(errs, errors.New("missions.resolving_lease must be positive"))
	}
	return errors.Join(errs...)
}

// Model builds the accrual model.
func (t Tuning) Model() economy.Model {
	model := economy.DefaultModel()
	model.Producers = t.Economy.Producers
	model.PowerPlants = t.Economy.PowerPlants
	model.StorageBase = t.Economy.StorageBase
	model.LowPowerFactor = t.Economy.LowPowerFactor
	model.CatchUp = time.Duration(t.Economy.CatchUpHours * float64(time.Hour))
	return model
}
