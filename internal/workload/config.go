// Package workload generates deterministic synthetic ledger workloads.
//
// A Config fully determines a Fixture: the same config with the same seed
// produces a byte-identical fixture on every run. All randomness flows
// through an explicit PRNG instance created from Config.Seed; nothing in
// this package touches global random state.
package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
//
// Numeric ranges mirror realistic mainnet shapes: gas prices between
// 1 gwei and 50 gwei, values between 1000 wei and 1 ether, gas limits
// between the bare-transfer minimum and a heavy contract call.
const (
	DefaultTransactionCount      = 1000
	DefaultBlockCount            = 100
	DefaultAddressPrefix         = "0x"
	DefaultAddressHexLen         = 40
	DefaultPerformanceIterations = 10000
	DefaultMemoryTestSize        = 1000
)

// Range is an inclusive [Min, Max] interval for uniform draws.
type Range struct {
	Min uint64 `yaml:"min" json:"min"`
	Max uint64 `yaml:"max" json:"max"`
}

// Config describes one synthetic workload. Immutable once constructed;
// construct via DefaultConfig or LoadConfig and treat as a value.
type Config struct {
	// TransactionCount is the number of transactions to generate.
	TransactionCount int `yaml:"transaction_count" json:"transaction_count"`

	// BlockCount is the number of blocks to generate. Block timestamps
	// also serve as the pool transactions draw their timestamps from,
	// so this must be at least 1.
	BlockCount int `yaml:"block_count" json:"block_count"`

	// GasPriceRange bounds per-transaction gas prices, in wei.
	GasPriceRange Range `yaml:"gas_price_range" json:"gas_price_range"`

	// ValueRange bounds per-transaction transfer values, in wei.
	ValueRange Range `yaml:"value_range" json:"value_range"`

	// GasLimitRange bounds per-transaction gas limits.
	GasLimitRange Range `yaml:"gas_limit_range" json:"gas_limit_range"`

	// TimestampRange bounds block timestamps (Unix seconds).
	TimestampRange Range `yaml:"timestamp_range" json:"timestamp_range"`

	// PayloadSizeRange bounds transaction payload lengths, in bytes.
	PayloadSizeRange Range `yaml:"payload_size_range" json:"payload_size_range"`

	// AddressPrefix is prepended to every generated address (e.g. "0x").
	AddressPrefix string `yaml:"address_prefix" json:"address_prefix"`

	// AddressHexLen is the number of lowercase hex characters after the
	// prefix. 40 produces Ethereum-shaped addresses.
	AddressHexLen int `yaml:"address_hex_len" json:"address_hex_len"`

	// PerformanceIterations is passed through to implementations that run
	// iterated micro-benchmarks.
	PerformanceIterations int `yaml:"performance_iterations" json:"performance_iterations"`

	// MemoryTestSize is the object count for memory estimation tests.
	MemoryTestSize int `yaml:"memory_test_size" json:"memory_test_size"`

	// Seed, when set, makes generation reproducible. When nil a random
	// seed is chosen at generator construction and can be read back via
	// Generator.Seed for inclusion in reports.
	Seed *uint64 `yaml:"seed" json:"seed,omitempty"`
}

// DefaultConfig returns the standard workload shape used by the built-in
// test catalogue.
func DefaultConfig() Config {
	return Config{
		TransactionCount:      DefaultTransactionCount,
		BlockCount:            DefaultBlockCount,
		GasPriceRange:         Range{Min: 1_000_000_000, Max: 50_000_000_000},
		ValueRange:            Range{Min: 1_000, Max: 1_000_000_000_000_000_000},
		GasLimitRange:         Range{Min: 21_000, Max: 1_000_000},
		TimestampRange:        Range{Min: 1_600_000_000, Max: 2_000_000_000},
		PayloadSizeRange:      Range{Min: 1, Max: 1024},
		AddressPrefix:         DefaultAddressPrefix,
		AddressHexLen:         DefaultAddressHexLen,
		PerformanceIterations: DefaultPerformanceIterations,
		MemoryTestSize:        DefaultMemoryTestSize,
	}
}

// LoadConfig reads a workload config YAML file over the defaults.
// Unknown fields are rejected so typos fail loudly rather than silently
// falling back to a default. The merged config is validated before return.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read workload config: %w", err)
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse workload config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigError reports an invalid workload configuration. Configuration
// errors are fatal: they are raised before any data is generated.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("workload config: %s: %s", e.Field, e.Reason)
}

// Validate checks counts and ranges. It returns a *ConfigError naming the
// first offending field, or nil if the config can generate a fixture.
func (c Config) Validate() error {
	if c.TransactionCount <= 0 {
		return &ConfigError{Field: "transaction_count", Reason: "must be positive"}
	}
	if c.BlockCount <= 0 {
		return &ConfigError{Field: "block_count", Reason: "must be positive"}
	}
	if c.AddressHexLen <= 0 {
		return &ConfigError{Field: "address_hex_len", Reason: "must be positive"}
	}
	if c.PerformanceIterations <= 0 {
		return &ConfigError{Field: "performance_iterations", Reason: "must be positive"}
	}
	if c.MemoryTestSize <= 0 {
		return &ConfigError{Field: "memory_test_size", Reason: "must be positive"}
	}

	ranges := []struct {
		field string
		r     Range
	}{
		{"gas_price_range", c.GasPriceRange},
		{"value_range", c.ValueRange},
		{"gas_limit_range", c.GasLimitRange},
		{"timestamp_range", c.TimestampRange},
		{"payload_size_range", c.PayloadSizeRange},
	}
	for _, rr := range ranges {
		if rr.r.Min == 0 && rr.r.Max == 0 {
			return &ConfigError{Field: rr.field, Reason: "range is empty"}
		}
		if rr.r.Min > rr.r.Max {
			return &ConfigError{
				Field:  rr.field,
				Reason: fmt.Sprintf("range is inverted (min %d > max %d)", rr.r.Min, rr.r.Max),
			}
		}
	}

	return nil
}
