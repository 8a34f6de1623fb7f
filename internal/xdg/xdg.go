package xdg

import (
	"os"
	"path/filepath"
)

// Dirs resolves the XDG base directories the tool uses: configuration
// and cache.
type Dirs struct {
	configHome string
	cacheHome  string
}

// New reads the XDG environment, falling back to the standard
// locations under the user's home directory.
func New() *Dirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "/tmp" // Last resort fallback
		}
	}

	d := &Dirs{}

	d.configHome = os.Getenv("XDG_CONFIG_HOME")
	if d.configHome == "" {
		d.configHome = filepath.Join(homeDir, ".config")
	}

	d.cacheHome = os.Getenv("XDG_CACHE_HOME")
	if d.cacheHome == "" {
		d.cacheHome = filepath.Join(homeDir, ".cache")
	}

	return d
}

// ConfigHome returns the base directory for user-specific configuration files
func (d *Dirs) ConfigHome() string {
	return d.configHome
}

// CacheHome returns the base directory for user-specific cached data
func (d *Dirs) CacheHome() string {
	return d.cacheHome
}

// AppConfigDir returns the application-specific config directory
func (d *Dirs) AppConfigDir(appName string) string {
	return filepath.Join(d.configHome, appName)
}

// AppCacheDir returns the application-specific cache directory
func (d *Dirs) AppCacheDir(appName string) string {
	return filepath.Join(d.cacheHome, appName)
}
