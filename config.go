package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// BranchType is a named preset that pre-fills the add flow: the prefix is
// prepended to the typed name and the base picks the start point.
type BranchType struct {
	Name     string `toml:"name"`
	Prefix   string `toml:"prefix"`
	Base     string `toml:"base"`
	Shortcut string `toml:"shortcut"`
}

// Config holds the file-backed settings. Project-level values override
// global ones field by field.
type Config struct {
	Editor        string       `toml:"editor,omitempty"`
	Terminal      string       `toml:"terminal,omitempty"`
	CopyFiles     []string     `toml:"copy_files,omitempty"`
	PostAddScript string       `toml:"post_add_script,omitempty"`
	BranchTypes   []BranchType `toml:"branch_types,omitempty"`

	// Resolved at load time from the environment so core logic never reads
	// the process environment directly.
	ResolvedEditor   string `toml:"-"`
	ResolvedTerminal string `toml:"-"`

	// Environment defaults captured once at load time, so edits can
	// re-resolve without consulting the process environment again.
	envEditor   string
	envTerminal string
}

const defaultEditor = "vim"

// LoadConfig reads the global config and overlays the project config for the
// given bare root. A missing file is not an error.
func LoadConfig(bareRoot string) (Config, error) {
	cfg, err := readConfigFile(globalConfigPath())
	if err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(bareRoot) != "" {
		project, err := readConfigFile(projectConfigPath(bareRoot))
		if err != nil {
			return Config{}, err
		}
		cfg.mergeFrom(project)
	}
	cfg.resolveEnvironment(os.Getenv("EDITOR"), os.Getenv("TERMINAL"))
	return cfg, nil
}

func readConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFrom(other Config) {
	if strings.TrimSpace(other.Editor) != "" {
		c.Editor = other.Editor
	}
	if strings.TrimSpace(other.Terminal) != "" {
		c.Terminal = other.Terminal
	}
	if len(other.CopyFiles) > 0 {
		c.CopyFiles = other.CopyFiles
	}
	if strings.TrimSpace(other.PostAddScript) != "" {
		c.PostAddScript = other.PostAddScript
	}
	if len(other.BranchTypes) > 0 {
		c.BranchTypes = other.BranchTypes
	}
}

func (c *Config) resolveEnvironment(envEditor string, envTerminal string) {
	c.envEditor = strings.TrimSpace(envEditor)
	c.envTerminal = strings.TrimSpace(envTerminal)
	c.refreshResolved()
}

// refreshResolved recomputes the resolved editor and terminal from the
// configured values and the environment captured at load time.
func (c *Config) refreshResolved() {
	c.ResolvedEditor = strings.TrimSpace(c.Editor)
	if c.ResolvedEditor == "" {
		c.ResolvedEditor = c.envEditor
	}
	if c.ResolvedEditor == "" {
		c.ResolvedEditor = defaultEditor
	}
	c.ResolvedTerminal = strings.TrimSpace(c.Terminal)
	if c.ResolvedTerminal == "" {
		c.ResolvedTerminal = c.envTerminal
	}
}

// BranchTypeByShortcut finds the preset bound to a one-character shortcut.
func (c Config) BranchTypeByShortcut(key string) (BranchType, bool) {
	for _, bt := range c.BranchTypes {
		if bt.Shortcut != "" && bt.Shortcut == key {
			return bt, true
		}
	}
	return BranchType{}, false
}

// SaveGlobal writes the config to the global path, creating directories as
// needed.
func (c Config) SaveGlobal() error {
	return c.saveTo(globalConfigPath())
}

// SaveProject writes the config next to the given bare root.
func (c Config) SaveProject(bareRoot string) error {
	return c.saveTo(projectConfigPath(bareRoot))
}

func (c Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func globalConfigPath() string {
	return filepath.Join(configDir(), "owt", "config.toml")
}

// projectConfigPath is `.owt/config.toml` beside the bare root.
func projectConfigPath(bareRoot string) string {
	return filepath.Join(owtDir(bareRoot), "config.toml")
}

// owtDir is the project-local settings directory, a sibling of the bare
// repository.
func owtDir(bareRoot string) string {
	parent := filepath.Dir(bareRoot)
	return filepath.Join(parent, ".owt")
}

// postAddScriptPath resolves the post-creation script: an explicit config
// value wins, else the conventional `.owt/post-add.sh` location.
func postAddScriptPath(cfg Config, bareRoot string) string {
	if strings.TrimSpace(cfg.PostAddScript) != "" {
		return cfg.PostAddScript
	}
	conventional := filepath.Join(owtDir(bareRoot), "post-add.sh")
	if _, err := os.Stat(conventional); err == nil {
		return conventional
	}
	return ""
}

func configDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return ".config"
}
