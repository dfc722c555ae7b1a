package tomasulo

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/sarchlab/tomasim/insts"
)

// StationConfig holds the number of reservation stations of each kind.
type StationConfig struct {
	Add   int `json:"add"`
	Mult  int `json:"mult"`
	Load  int `json:"load"`
	Store int `json:"store"`
}

// Count returns the number of stations of a kind.
func (c StationConfig) Count(kind insts.StationKind) int {
	switch kind {
	case insts.StationAdd:
		return c.Add
	case insts.StationMult:
		return c.Mult
	case insts.StationLoad:
		return c.Load
	case insts.StationStore:
		return c.Store
	default:
		return 0
	}
}

// Config configures the scheduler.
type Config struct {
	// Stations sets the reservation station pool sizes.
	// Default: 3 ADD, 2 MULT, 3 LOAD, 3 STORE.
	Stations StationConfig `json:"stations"`

	// MaxCycles is the cycle ceiling. A run that has not completed after
	// MaxCycles cycles fails with a DivergenceError. Default: 10000.
	MaxCycles uint64 `json:"max_cycles"`

	// FoldConstants evaluates arithmetic whose operands are both numeric
	// constants instead of keeping the expression. Default: true.
	FoldConstants bool `json:"fold_constants"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Stations: StationConfig{
			Add:   3,
			Mult:  2,
			Load:  3,
			Store: 3,
		},
		MaxCycles:     10000,
		FoldConstants: true,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrap(err, "failed to read scheduler config file")
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrap(err, "failed to parse scheduler config")
	}

	return config, nil
}

// Validate checks that every pool has between 1 and 255 stations and that
// the cycle ceiling is set.
func (c Config) Validate() error {
	for kind := insts.StationKind(0); kind < insts.NumStationKinds; kind++ {
		n := c.Stations.Count(kind)
		if n < 1 || n > 255 {
			return errors.Errorf("%s station count must be in [1, 255], got %d", kind, n)
		}
	}

	if c.MaxCycles == 0 {
		return errors.New("max_cycles must be > 0")
	}

	return nil
}
