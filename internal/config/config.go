// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFileName   = "config.yaml"
	DefaultConfigDir        = ".config/rdpmen"
	DefaultRegistryFileName = "hosts.csv"
	DefaultVaultFileName    = "vault.enc"
	DefaultFilePerms        = 0600

	// EnvPrefix is the prefix for environment overrides, e.g.
	// RDPMEN_PROBE_TIMEOUT.
	EnvPrefix = "rdpmen"
)

// Config holds the application settings. Values come from the YAML
// config file when it exists, overridden by RDPMEN_* environment
// variables; defaults apply for everything left unset.
type Config struct {
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	RegistryPath  string `yaml:"registry_path" envconfig:"REGISTRY_PATH"`
	VaultBackend  string `yaml:"vault_backend" envconfig:"VAULT_BACKEND"` // "keyring" or "file"
	VaultPath     string `yaml:"vault_path" envconfig:"VAULT_PATH"`
	// VaultPassphrase unlocks the file vault backend. Environment only,
	// never read from or written to the config file.
	VaultPassphrase string `yaml:"-" envconfig:"VAULT_PASSPHRASE"`
	ClientCommand string `yaml:"client_command" envconfig:"CLIENT_COMMAND"`
	SessionPort   int    `yaml:"session_port" envconfig:"SESSION_PORT"`

	ProbeTimeout     time.Duration `yaml:"probe_timeout" envconfig:"PROBE_TIMEOUT"`
	ProbeConcurrency int           `yaml:"probe_concurrency" envconfig:"PROBE_CONCURRENCY"`
	ProbePause       time.Duration `yaml:"probe_pause" envconfig:"PROBE_PAUSE"`
	CacheTTL         time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	RefreshSchedule  string        `yaml:"refresh_schedule" envconfig:"REFRESH_SCHEDULE"`

	Fullscreen    bool   `yaml:"fullscreen" envconfig:"FULLSCREEN"`
	DesktopWidth  int    `yaml:"desktop_width" envconfig:"DESKTOP_WIDTH"`
	DesktopHeight int    `yaml:"desktop_height" envconfig:"DESKTOP_HEIGHT"`
	LogLevel      string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// Default returns the built-in settings. DataDir and the derived paths
// are left empty here and filled in by Load once the home directory is
// known.
func Default() Config {
	return Config{
		VaultBackend:     "keyring",
		ClientCommand:    defaultClientCommand(),
		SessionPort:      3389,
		ProbeTimeout:     2 * time.Second,
		ProbeConcurrency: 5,
		ProbePause:       250 * time.Millisecond,
		CacheTTL:         30 * time.Second,
		RefreshSchedule:  "@every 60s",
		Fullscreen:       true,
		DesktopWidth:     1920,
		DesktopHeight:    1080,
		LogLevel:         "info",
	}
}

func defaultClientCommand() string {
	switch runtime.GOOS {
	case "windows":
		return "mstsc"
	case "darwin":
		return "open"
	default:
		return "xfreerdp"
	}
}

// Load reads the config file at path (the default location when path is
// empty), applies environment overrides and fills in derived defaults.
// A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config file: %v", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %v", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process environment: %v", err)
	}

	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return cfg, err
		}
		cfg.DataDir = dir
	}
	if cfg.RegistryPath == "" {
		cfg.RegistryPath = filepath.Join(cfg.DataDir, DefaultRegistryFileName)
	}
	if cfg.VaultPath == "" {
		cfg.VaultPath = filepath.Join(cfg.DataDir, DefaultVaultFileName)
	}

	return cfg, nil
}

// EnsureDataDir creates the application data directory if needed.
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}
	return nil
}

func defaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %v", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// DefaultConfigPath returns the default config file location under the
// user profile.
func DefaultConfigPath() (string, error) {
	dir, err := defaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFileName), nil
}
