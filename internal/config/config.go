package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the alarm-clock server.
type Config struct {
	// ListenAddress is the HTTP listen address for the API server.
	ListenAddress string `yaml:"listen_addr"`
	// StoreBackend selects the alarm persistence backend: "file" or "sqlite".
	StoreBackend string `yaml:"store_backend"`
	// StoreFile is the path to the JSON file holding the alarm collection.
	StoreFile string `yaml:"store_file"`
	// DatabaseFile is the path to the SQLite database when the sqlite backend is selected.
	DatabaseFile string `yaml:"database_file"`
	// SnoozeDelay is how far a snoozed alarm is pushed into the future.
	SnoozeDelay time.Duration `yaml:"snooze_delay"`
	// Channel is the notification channel identifier passed to the scheduler.
	Channel string `yaml:"notification_channel"`
	// DefaultSound is the audio asset used when an alarm does not name one.
	DefaultSound string `yaml:"default_sound"`
	// PaymentAddress is the optional destination for the snooze payment side effect.
	// When empty the side effect is disabled.
	PaymentAddress string `yaml:"payment_address"`
	// PaymentAmount is the amount transferred per snooze, in the smallest unit.
	PaymentAmount uint64 `yaml:"payment_amount"`
	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for server settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultStoreFilename is the default filename for the alarm collection JSON.
	DefaultStoreFilename = "alarm-clock-alarms.json"

	// DefaultDatabaseFilename is the default filename for the SQLite backend.
	DefaultDatabaseFilename = "alarm-clock.db"

	// DefaultListenAddress is used when no listen address is configured.
	DefaultListenAddress = ":8080"

	// DefaultSnoozeDelay is how long a snooze defers the alarm.
	DefaultSnoozeDelay = 5 * time.Minute

	// DefaultChannel is the notification channel used for alarm deliveries.
	DefaultChannel = "alarm-channel"

	// DefaultSound is the fallback audio asset identifier.
	DefaultSound = "alarm_classic"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600
)

// Supported persistence backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned when store_backend names an unsupported backend.
	errUnknownBackend = errors.New("unknown store backend")
	// errPaymentAddressRequired is returned when an amount is set without a destination.
	errPaymentAddressRequired = errors.New("payment amount requires a payment address")
)

// Load reads configuration from the provided path and validates essential fields.
// A missing file yields the default configuration rather than an error, so the
// server can start with zero setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Default returns a configuration populated with every default value.
func Default() *Config {
	cfg := new(Config)
	// Validate never fails on the zero value; it only fills defaults.
	_ = Validate(cfg)

	return cfg
}

// Validate checks the provided configuration for required fields
// and fills defaults for everything left unset.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	switch cfg.StoreBackend {
	case "":
		cfg.StoreBackend = BackendFile
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, cfg.StoreBackend)
	}

	if cfg.StoreFile == "" {
		cfg.StoreFile = DefaultStoreFilename
	}

	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = DefaultDatabaseFilename
	}

	if cfg.SnoozeDelay <= 0 {
		cfg.SnoozeDelay = DefaultSnoozeDelay
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}

	if cfg.DefaultSound == "" {
		cfg.DefaultSound = DefaultSound
	}

	if cfg.PaymentAmount > 0 && cfg.PaymentAddress == "" {
		return errPaymentAddressRequired
	}

	return nil
}
