// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"jsondropper/internal/util"
)

// ConfigFileName is the name of the file stored next to the executable.
const ConfigFileName = "configJsonDropper.json"

// CurrentVersion is written into every saved file. Files without a version
// come from the single-directory releases and are migrated on load.
const CurrentVersion = "2.0"

// EnvConfigPath overrides the config location.
const EnvConfigPath = "JSONDROPPER_CONFIG"

var (
	ErrRootExists   = errors.New("root is already configured")
	ErrRootNotFound = errors.New("root is not configured")
)

// Settings holds behaviour switches editable with `config set`.
type Settings struct {
	PauseOnExit   bool     `json:"pause_on_exit"`
	StagedReplace bool     `json:"staged_replace"`
	Exclude       []string `json:"exclude"`
}

// Config is the persisted state: the list of roots searched for project
// folders plus settings. It is loaded once per process and written back only
// by explicit edits.
type Config struct {
	Version  string   `json:"version"`
	Roots    []string `json:"roots"`
	Settings Settings `json:"settings"`

	// TargetDirectory is the single root used by version 1 files.
	TargetDirectory string `json:"TargetDirectory,omitempty"`

	path string
	mu   sync.RWMutex
}

// DefaultPath returns $JSONDROPPER_CONFIG or the config file beside the
// executable.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return util.GetAbsPath(p)
	}
	exeDir, err := util.GetExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(exeDir, ConfigFileName), nil
}

// Default returns an unsaved configuration bound to path.
func Default(path string) *Config {
	return &Config{
		Version:  CurrentVersion,
		Roots:    []string{},
		Settings: Settings{PauseOnExit: true, Exclude: []string{}},
		path:     path,
	}
}

// Load reads the configuration at path. A missing file yields the defaults.
// A damaged file is reported and replaced by the defaults so the user can
// still repair the setup from the interactive mode.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(path), nil
		}
		return nil, fmt.Errorf("read config file '%s': %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		util.WarningPrint("Config file '%s' is empty, using defaults.\n", path)
		return Default(path), nil
	}

	cfg := Default(path)
	cfg.Version = ""
	if err := json.Unmarshal(data, cfg); err != nil {
		util.WarningPrint("Config file '%s' is damaged (%v), using defaults.\n", path, err)
		return Default(path), nil
	}
	cfg.path = path
	cfg.migrate()
	return cfg, nil
}

// migrate upgrades older layouts in memory. The file is rewritten on the
// next edit.
func (c *Config) migrate() {
	// version 1 files carried nothing but TargetDirectory
	if c.TargetDirectory != "" {
		if abs, err := util.GetAbsPath(c.TargetDirectory); err == nil && !containsPath(c.Roots, abs) {
			c.Roots = append(c.Roots, abs)
		}
		c.TargetDirectory = ""
	}
	if c.Roots == nil {
		c.Roots = []string{}
	}
	if c.Settings.Exclude == nil {
		c.Settings.Exclude = []string{}
	}
	c.Version = CurrentVersion
}

// Path returns the file the configuration is bound to.
func (c *Config) Path() string { return c.path }

// Save writes the configuration to its file. Concurrent writers from other
// processes are serialized through a lock file.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked does the actual write. Callers hold c.mu.
func (c *Config) saveLocked() error {
	dir := filepath.Dir(c.path)
	if err := util.EnsureDirExists(dir); err != nil {
		return fmt.Errorf("ensure config directory '%s': %w", dir, err)
	}

	lock := flock.New(c.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config file: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	c.Version = CurrentVersion
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write config file '%s': %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config file '%s': %w", c.path, err)
	}
	return nil
}

// === accessors ===

// GetSettings returns a copy of the current settings.
func (c *Config) GetSettings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.Settings
	s.Exclude = append([]string(nil), c.Settings.Exclude...)
	return s
}

// GetRoots returns a copy of the configured roots.
func (c *Config) GetRoots() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.Roots...)
}

// AddRoot stores p as an absolute path and saves. p must be an existing
// directory.
func (c *Config) AddRoot(p string) (string, error) {
	abs, err := util.GetAbsPath(p)
	if err != nil {
		return "", err
	}
	isDir, err := util.IsDir(abs)
	if err != nil {
		return "", err
	}
	if !isDir {
		return "", fmt.Errorf("'%s' does not exist or is not a directory", abs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if containsPath(c.Roots, abs) {
		return abs, fmt.Errorf("'%s': %w", abs, ErrRootExists)
	}
	c.Roots = append(c.Roots, abs)
	return abs, c.saveLocked()
}

// RemoveRoot removes a root given either as a path or as its 1-based
// position in the list, and saves.
func (c *Config) RemoveRoot(ref string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	if n, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil && n >= 1 && n <= len(c.Roots) {
		idx = n - 1
	}
	if idx < 0 {
		abs, err := util.GetAbsPath(ref)
		if err != nil {
			return "", err
		}
		for i, r := range c.Roots {
			if util.SamePath(r, abs) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("'%s': %w", ref, ErrRootNotFound)
	}

	removed := c.Roots[idx]
	c.Roots = append(c.Roots[:idx], c.Roots[idx+1:]...)
	return removed, c.saveLocked()
}

// SetPauseOnExit updates the setting and saves.
func (c *Config) SetPauseOnExit(v bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Settings.PauseOnExit = v
	return c.saveLocked()
}

// SetStagedReplace updates the setting and saves.
func (c *Config) SetStagedReplace(v bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Settings.StagedReplace = v
	return c.saveLocked()
}

// SetExclude replaces the exclude patterns and saves. Every pattern must be
// a valid doublestar glob.
func (c *Config) SetExclude(patterns []string) error {
	clean := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern '%s'", p)
		}
		clean = append(clean, p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Settings.Exclude = clean
	return c.saveLocked()
}

func containsPath(list []string, p string) bool {
	for _, x := range list {
		if util.SamePath(x, p) {
			return true
		}
	}
	return false
}
