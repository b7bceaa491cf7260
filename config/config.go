package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/internal/util"
	"github.com/brettbedarf/explorerfs/pathkey"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultOSProfile selects the profile of the running platform
	DefaultOSProfile = ""

	DefaultSortOrder = explorerfs.SortDefault

	DefaultFileNestingEnabled = false

	// DefaultListTimeout bounds a single backend listing in seconds
	DefaultListTimeout = 30.0
)

// Log verbosity values accepted by [ConfigOverride].LogLvl (CLI -v)
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// FileNesting configures the presentation-only grouping of related files.
type FileNesting struct {
	Enabled bool
	// Patterns maps a primary glob to a comma-separated list of dependent globs,
	// i.e. "*.ts": "${capture}.js, ${capture}.d.ts"
	Patterns map[string]string
}

// Config contains runtime configuration values for the explorer tree.
// It is read at the start of every child fetch so changes apply to the next fetch.
type Config struct {
	LogLvl      util.LogLevel
	OSProfile   string               // Name of the path profile; "" for the running platform
	SortOrder   explorerfs.SortOrder // Default order used when callers don't pick one
	FileNesting FileNesting
	ListTimeout float64 // Backend listing timeout in seconds; 0 disables (Default 30)
}

// Profile resolves the configured path profile, falling back to the running platform.
func (c *Config) Profile() *pathkey.Profile {
	p, err := pathkey.Lookup(c.OSProfile)
	if err != nil {
		return pathkey.Current()
	}
	return p
}

// ListTimeoutDuration returns ListTimeout as a duration
func (c *Config) ListTimeoutDuration() time.Duration {
	return time.Duration(c.ListTimeout * float64(time.Second))
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if _, err := pathkey.Lookup(c.OSProfile); err != nil {
		return err
	}
	if !c.SortOrder.Valid() {
		return fmt.Errorf("unknown sort order: %q", c.SortOrder)
	}
	if c.ListTimeout < 0 {
		return fmt.Errorf("list timeout must not be negative: %v", c.ListTimeout)
	}
	return nil
}

// Clone returns a deep copy so the patterns map is never shared
func (c *Config) Clone() *Config {
	cp := *c
	cp.FileNesting.Patterns = maps.Clone(c.FileNesting.Patterns)
	return &cp
}

// FileNestingOverride is the partial form of [FileNesting].
// A non-nil Patterns map replaces the current patterns entirely.
type FileNestingOverride struct {
	Enabled  *bool            `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Patterns map[string]string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace)
	LogLvl      *int                 `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	OSProfile   *string              `yaml:"os_profile,omitempty" json:"os_profile,omitempty"`
	SortOrder   *string              `yaml:"sort_order,omitempty" json:"sort_order,omitempty"`
	FileNesting *FileNestingOverride `yaml:"file_nesting,omitempty" json:"file_nesting,omitempty"`
	ListTimeout *float64             `yaml:"list_timeout,omitempty" json:"list_timeout,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:      DefaultLogLvl,
		OSProfile:   DefaultOSProfile,
		SortOrder:   DefaultSortOrder,
		FileNesting: FileNesting{Enabled: DefaultFileNestingEnabled, Patterns: map[string]string{}},
		ListTimeout: DefaultListTimeout,
	}
}

// NewConfig creates a default Config with override applied. A nil override
// returns the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbosity(*override.LogLvl)
	}
	if override.OSProfile != nil {
		c.OSProfile = strings.TrimSpace(*override.OSProfile)
	}
	if override.SortOrder != nil {
		if order, err := explorerfs.ParseSortOrder(*override.SortOrder); err == nil {
			c.SortOrder = order
		} else {
			// kept verbatim so Validate reports it
			c.SortOrder = explorerfs.SortOrder(*override.SortOrder)
		}
	}
	if fn := override.FileNesting; fn != nil {
		if fn.Enabled != nil {
			c.FileNesting.Enabled = *fn.Enabled
		}
		if fn.Patterns != nil {
			c.FileNesting.Patterns = maps.Clone(fn.Patterns)
		}
	}
	if override.ListTimeout != nil {
		c.ListTimeout = *override.ListTimeout
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// The result is validated.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
