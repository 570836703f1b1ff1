// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic used by the CLI ("fermi config backups.max 5") and MCP.
//
// Design: Backups is a pointer so we can distinguish between "not set" (nil)
// and "explicitly set". Defaults are applied only when the user hasn't set a
// value, and Unset returns a key to its default.

package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
)

// Configuration keys.
const (
	KeyStorageRoot = "storage.root"
	KeyMaxBackups  = "backups.max"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{KeyStorageRoot, KeyMaxBackups}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyStorageRoot:
		return c.StorageRoot, nil
	case KeyMaxBackups:
		return strconv.Itoa(c.MaxBackups()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyStorageRoot:
		if value != "" && !filepath.IsAbs(value) {
			return fmt.Errorf("%w: storage.root must be an absolute path", ErrInvalidValue)
		}
		if value != "" {
			value = filepath.Clean(value)
		}
		c.StorageRoot = value
	case KeyMaxBackups:
		n, err := strconv.Atoi(value)
		if err != nil || n < MinMaxBackups || n > MaxMaxBackups {
			return fmt.Errorf("%w: backups.max must be an integer between %d and %d",
				ErrInvalidValue, MinMaxBackups, MaxMaxBackups)
		}
		c.Backups = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Unset clears a key back to its default.
func (c *Config) Unset(key string) error {
	switch key {
	case KeyStorageRoot:
		c.StorageRoot = ""
	case KeyMaxBackups:
		c.Backups = nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	return map[string]string{
		KeyStorageRoot: c.StorageRoot,
		KeyMaxBackups:  strconv.Itoa(c.MaxBackups()),
	}
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case KeyStorageRoot:
		return c.StorageRoot != ""
	case KeyMaxBackups:
		return c.Backups != nil
	default:
		return false
	}
}
