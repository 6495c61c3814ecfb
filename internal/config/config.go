package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Session  SessionConfig  `mapstructure:"session"`
}

type StoreConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, file, redis, memory
	Dir      string `mapstructure:"dir"`
	RedisURL string `mapstructure:"redis_url"`
	Prefix   string `mapstructure:"prefix"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type ViewportConfig struct {
	CellWidth int `mapstructure:"cell_width"`
	// Width overrides the measured terminal width when set.
	Width int `mapstructure:"width"`
}

type SessionConfig struct {
	User string `mapstructure:"user"`
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Dir returns ~/.jobdeck, or $JOBDECK_HOME when set.
func Dir() (string, error) {
	if dir := os.Getenv("JOBDECK_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".jobdeck"), nil
}

// Load reads ~/.jobdeck/config.yaml, writing a default one first if none
// exists.
func Load() (*Config, error) {
	configDir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configDir)
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(configDir string) (*Config, error) {
	configFile := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return nil, err
		}
	}

	viper.Reset()
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")

	viper.SetDefault("store.driver", DriverSQLite)
	viper.SetDefault("store.dir", filepath.Join(configDir, "store"))
	viper.SetDefault("store.redis_url", "redis://localhost:6379/0")
	viper.SetDefault("store.prefix", "jobdeck:")
	viper.SetDefault("catalog.path", filepath.Join(configDir, "jobdeck.db"))
	viper.SetDefault("viewport.cell_width", 8)
	viper.SetDefault("viewport.width", 0)
	viper.SetDefault("session.user", "")

	viper.SetEnvPrefix("JOBDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverFile, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store.driver %q (want sqlite, file, redis or memory)", ErrInvalid, c.Store.Driver)
	}
	if c.Viewport.CellWidth <= 0 {
		return fmt.Errorf("%w: viewport.cell_width must be positive, got %d", ErrInvalid, c.Viewport.CellWidth)
	}
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# jobdeck configuration
store:
  # sqlite, file, redis or memory
  driver: sqlite
  redis_url: redis://localhost:6379/0

viewport:
  # pixels per terminal column, used to pick the page size
  cell_width: 8
  # fixed viewport width in pixels; 0 measures the terminal
  width: 0

session:
  # applications are only accepted while a user is set
  user: ""
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Set writes key to the loaded config file. Only what the file already holds
// plus key is written back; defaults and JOBDECK_* overrides stay out of it.
func Set(key, value string) error {
	path := viper.ConfigFileUsed()
	if path == "" {
		return errors.New("config not loaded")
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	file.Set(key, value)
	if err := file.WriteConfig(); err != nil {
		return err
	}

	viper.Set(key, value)
	return nil
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// Path returns the path to the config file
func Path() string {
	return viper.ConfigFileUsed()
}
