// Package config provides configuration management for ticklist.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Jump modes select what "jump to row N" does.
const (
	// JumpMark marks every row before N as checked
	JumpMark = "mark"
	// JumpScroll only moves the highlight to row N
	JumpScroll = "scroll"
)

// DefaultDetailTemplate renders attribute fields as "name: value" pairs.
const DefaultDetailTemplate = `{{ range $i, $f := .Fields }}{{ if $i }} | {{ end }}{{ $f.Name }}: {{ $f.Value }}{{ end }}`

// DefaultHistoryLimit is the number of saves kept per list.
const DefaultHistoryLimit = 20

// AppConfig is stored in ~/.config/ticklist/config.yaml. Every field is
// optional; missing keys keep their defaults.
type AppConfig struct {
	// StateDB is the path of the progress database
	StateDB string `yaml:"state_db"`
	// KeyColumn names the lookup column of attribute files; empty means the first column
	KeyColumn string `yaml:"key_column"`
	// JumpMode is JumpMark or JumpScroll
	JumpMode string `yaml:"jump_mode"`
	// DetailTemplate is a text/template for one attribute record
	DetailTemplate string `yaml:"detail_template"`
	// HistoryLimit is the number of saves kept per list
	HistoryLimit int `yaml:"history_limit"`
	// ShowDetails shows attribute details when the TUI starts
	ShowDetails bool `yaml:"show_details"`
	// Autosave persists progress after every change
	Autosave bool `yaml:"autosave"`
}

const (
	appConfigDir  = ".config/ticklist"
	appConfigFile = "config.yaml"
	appDataDir    = ".local/share/ticklist"
	stateDBFile   = "progress.db"
)

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	return &AppConfig{
		StateDB:        filepath.ToSlash(filepath.Join("~", appDataDir, stateDBFile)),
		JumpMode:       JumpMark,
		DetailTemplate: DefaultDetailTemplate,
		HistoryLimit:   DefaultHistoryLimit,
		Autosave:       true,
	}
}

// LoadAppConfig loads ~/.config/ticklist/config.yaml, falling back to
// defaults when the file does not exist.
func LoadAppConfig() (*AppConfig, error) {
	path := AppConfigPath()
	if path == "" {
		return nil, fmt.Errorf("getting home directory: cannot determine config location")
	}
	return LoadAppConfigFrom(path)
}

// LoadAppConfigFrom loads the app configuration at path. A missing file
// yields the defaults.
func LoadAppConfigFrom(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.StateDB = ExpandPath(cfg.StateDB)
			return cfg, nil
		}

		return nil, fmt.Errorf("reading app config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing app config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.StateDB = ExpandPath(cfg.StateDB)

	return cfg, nil
}

// SaveAppConfig saves the app configuration to path, creating its directory.
func SaveAppConfig(cfg *AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := marshalYAML(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	content := fmt.Sprintf("# ticklist app configuration\n\n%s", string(data))

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// AppConfigPath returns the path where the app config is stored.
// Returns an empty string if the home directory cannot be determined.
func AppConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, appConfigDir, appConfigFile)
}
