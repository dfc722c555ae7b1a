package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the calculating latency of every opcode, in cycles.
// Defaults follow the classic Tomasulo textbook setup.
type TimingConfig struct {
	// AddLatency is the latency of ADDD. Default: 2 cycles.
	AddLatency uint64 `json:"add_latency"`

	// SubLatency is the latency of SUBD. Default: 2 cycles.
	SubLatency uint64 `json:"sub_latency"`

	// MultiplyLatency is the latency of MULTD. Default: 10 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// DivideLatency is the latency of DIVD. Default: 20 cycles.
	DivideLatency uint64 `json:"divide_latency"`

	// LoadLatency is the latency of LD, address calculation included.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency of SD. Default: 2 cycles.
	StoreLatency uint64 `json:"store_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default latencies.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		AddLatency:      2,
		SubLatency:      2,
		MultiplyLatency: 10,
		DivideLatency:   20,
		LoadLatency:     2,
		StoreLatency:    2,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.AddLatency == 0 {
		return fmt.Errorf("add_latency must be > 0")
	}
	if c.SubLatency == 0 {
		return fmt.Errorf("sub_latency must be > 0")
	}
	if c.MultiplyLatency == 0 {
		return fmt.Errorf("multiply_latency must be > 0")
	}
	if c.DivideLatency == 0 {
		return fmt.Errorf("divide_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	return &TimingConfig{
		AddLatency:      c.AddLatency,
		SubLatency:      c.SubLatency,
		MultiplyLatency: c.MultiplyLatency,
		DivideLatency:   c.DivideLatency,
		LoadLatency:     c.LoadLatency,
		StoreLatency:    c.StoreLatency,
	}
}
