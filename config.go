package jointown

import (
	"fmt"
)

// Default configuration values.
const (
	// DefaultSubscriberBuffer is the channel capacity of snapshot subscribers.
	DefaultSubscriberBuffer = 16

	// LargeWorldObjects is the object count above which ValidateWithWarnings
	// reports that even-out searches may become slow.
	LargeWorldObjects = 1 << 16
)

// Config is the configuration of a World.
//
// Field tags cover both YAML and TOML so the same struct can be embedded in
// file-based configurations.
type Config struct {
	// Objects is the number of objects N. Object ids are 0..N-1.
	// Zero is a valid (empty) world.
	Objects int `yaml:"objects" toml:"objects"`

	// SubscriberBuffer is the channel capacity of each Subscribe channel.
	// A subscriber that falls further behind misses snapshots.
	SubscriberBuffer int `yaml:"subscriberBuffer" toml:"subscriber_buffer"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values and no objects
func DefaultConfig() Config {
	return Config{
		Objects:          0,
		SubscriberBuffer: DefaultSubscriberBuffer,
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Objects is never defaulted because zero objects is meaningful.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.SubscriberBuffer == 0 {
		cfg.SubscriberBuffer = defaults.SubscriberBuffer
	}
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - Objects >= 0
//   - SubscriberBuffer >= 0
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Objects < 0 {
		return fmt.Errorf("%w: Objects must be >= 0, got %d", ErrInvalidConfig, cfg.Objects)
	}

	if cfg.SubscriberBuffer < 0 {
		return fmt.Errorf("%w: SubscriberBuffer must be >= 0, got %d", ErrInvalidConfig, cfg.SubscriberBuffer)
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but unusual values.
//
// This is called after Validate() in NewWorld() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.Objects == 0 {
		logger.Warn("world has no objects: every person will own nothing")
	}

	if cfg.Objects > LargeWorldObjects {
		logger.Warn(
			"large world: even-out searches grow with objects times persons",
			"objects", cfg.Objects,
			"recommended_max", LargeWorldObjects,
		)
	}

	if cfg.SubscriberBuffer == 0 {
		logger.Warn("SubscriberBuffer is 0: subscribers only receive snapshots they are waiting for")
	}
}

// TestConfig returns a small configuration for tests.
//
// Returns:
//   - Config: Ten objects and a small subscriber buffer
func TestConfig() Config {
	return Config{
		Objects:          10,
		SubscriberBuffer: 4,
	}
}
