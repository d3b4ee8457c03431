// Package config loads and validates the mapper/reducer runtime
// configuration: reducer topology, the mapper's memory budget, the I/O
// buffer size, and the archive entry filters.
//
// Grounded on the teacher's internal/config package: a KDL-backed Config
// struct with smart defaults and a validation pass (kdl_config.go,
// validator.go), adapted from a source-indexing project's settings to
// the mapper/reducer's own fields.
package config

import "fmt"

// Config is the fully resolved runtime configuration for one mapper or
// reducer invocation.
type Config struct {
	NumReducers     uint32
	MemLimitKB      uint64
	BufferSizeBytes int

	Include []string
	Exclude []string
}

const (
	DefaultBufferSizeBytes = 8192
	DefaultMemLimitKB      = 512 * 1024
	DefaultNumReducers     = 4
)

// Defaults returns a Config with the same smart defaults LoadKDL falls back
// to when a field is absent from the config file.
func Defaults() *Config {
	return &Config{
		NumReducers:     DefaultNumReducers,
		MemLimitKB:      DefaultMemLimitKB,
		BufferSizeBytes: DefaultBufferSizeBytes,
	}
}

// Validator checks a Config for internally-inconsistent or out-of-range
// values, filling in defaults for anything left at its zero value.
type Validator struct{}

// ValidateAndSetDefaults mutates cfg in place, applying defaults to zero
// fields and rejecting combinations that cannot produce a usable run.
func (Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.NumReducers == 0 {
		cfg.NumReducers = DefaultNumReducers
	}
	if cfg.MemLimitKB == 0 {
		cfg.MemLimitKB = DefaultMemLimitKB
	}
	if cfg.BufferSizeBytes == 0 {
		cfg.BufferSizeBytes = DefaultBufferSizeBytes
	}
	if cfg.BufferSizeBytes < 0 {
		return fmt.Errorf("config: buffer_size_bytes must be positive, got %d", cfg.BufferSizeBytes)
	}
	return nil
}
