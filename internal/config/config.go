// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error kinds.
package config

// Default configuration values.
const (
	defaultAddr            = ":8090"
	defaultDataDir         = "./data"
	defaultLockTimeoutMS   = 5000
	defaultLockRetryMS     = 50
	defaultMaxPayloadBytes = 1 << 20
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// DataDir is the root directory holding all event data and lock files.
	DataDir string `koanf:"data_dir"`

	// LockTimeoutMS bounds the wait for any single lock acquisition.
	LockTimeoutMS int `koanf:"lock_timeout_ms"`

	// LockRetryMS sets the polling interval while waiting for a lock.
	LockRetryMS int `koanf:"lock_retry_ms"`

	// MaxPayloadBytes caps the size of a posted scan payload.
	MaxPayloadBytes int64 `koanf:"max_payload_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            defaultAddr,
		DataDir:         defaultDataDir,
		LockTimeoutMS:   defaultLockTimeoutMS,
		LockRetryMS:     defaultLockRetryMS,
		MaxPayloadBytes: defaultMaxPayloadBytes,
	}
}
