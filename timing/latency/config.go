package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds execute latencies for each class of RV32I instruction.
// A latency of N means a ready station entry fires on the Nth cycle it
// spends executing.
type TimingConfig struct {
	// ALULatency is the latency of register and immediate ALU operations,
	// including LUI and AUIPC. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the latency of conditional branches. This does not
	// include the flush that follows a misprediction. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// JumpLatency is the latency of JAL and JALR. Default: 1 cycle.
	JumpLatency uint64 `json:"jump_latency"`

	// LoadLatency is the latency of a load once it has passed memory
	// disambiguation. Default: 3 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency of a store address/data resolution.
	// Memory is written when the store commits. Default: 3 cycles.
	StoreLatency uint64 `json:"store_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default latencies.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:    1,
		BranchLatency: 1,
		JumpLatency:   1,
		LoadLatency:   3,
		StoreLatency:  3,
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
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.JumpLatency == 0 {
		return fmt.Errorf("jump_latency must be > 0")
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
	clone := *c
	return &clone
}
