// Package config provides reading and writing of fermi configuration.
// Supports both global (~/.fermi/config.json) and local (.fermi/config.json).
// Reading: uses local if it exists, otherwise global.
// Writing: goes back to where it was read from, use --local for local.
//
// The persisted form is a small JSON blob with two fields:
//
//	{"storageRoot": "/home/me/Ferments", "maxBackups": 3}
//
// storageRoot is optional (absent = <documents>/fermi); maxBackups defaults
// to 3 and is bounded to [1,20].
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	fpath "github.com/jpl-au/fermi/internal/path"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.fermi/config.json (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is directory-specific config in .fermi/config.json
	ScopeLocal
)

// String returns "global" or "local".
func (s Scope) String() string {
	if s == ScopeLocal {
		return "local"
	}
	return "global"
}

// DefaultMaxBackups is the retention count applied when not configured.
const DefaultMaxBackups = 3

// Validation bounds for configuration values.
const (
	MinMaxBackups = 1
	MaxMaxBackups = 20
)

// Config contains configuration for fermi.
type Config struct {
	StorageRoot string `json:"storageRoot,omitempty"`
	Backups     *int   `json:"maxBackups,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Backups != nil {
		v := *c.Backups
		if v < MinMaxBackups || v > MaxMaxBackups {
			return fmt.Errorf("%w: maxBackups must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxBackups, MaxMaxBackups, v)
		}
	}
	if c.StorageRoot != "" && !filepath.IsAbs(c.StorageRoot) {
		return fmt.Errorf("%w: storageRoot must be an absolute path, got %q",
			ErrInvalidValue, c.StorageRoot)
	}
	return nil
}

// MaxBackups returns the backup retention count (defaults to 3).
func (c *Config) MaxBackups() int {
	if c.Backups == nil {
		return DefaultMaxBackups
	}
	return *c.Backups
}

// Clone returns a deep copy, including the load location.
func (c *Config) Clone() *Config {
	out := *c
	if c.Backups != nil {
		n := *c.Backups
		out.Backups = &n
	}
	return &out
}

// LocalPath returns the path to the local (directory) config file.
func LocalPath() string {
	return filepath.Join(fpath.HomeDirName, "config.json")
}

// globalPathFunc returns the global config path.
// Tests can override this to use a temp directory.
var globalPathFunc = func() string {
	return filepath.Join(fpath.Home(), "config.json")
}

// GlobalPath returns the path to the global (user) config file: ~/.fermi/config.json
func GlobalPath() string {
	return globalPathFunc()
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}
	return loadPath(path, scope)
}

// LoadFile reads configuration from an explicit file (FERMI_CONFIG).
// The result saves back to the same file.
func LoadFile(path string) (*Config, error) {
	return loadPath(path, ScopeGlobal)
}

func loadPath(path string, scope Scope) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the JSON syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Path returns the file this config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
