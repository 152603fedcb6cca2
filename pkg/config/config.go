// Package config defines the pre-parsed configuration the controller
// consumes: command definitions, watch specs, and the hotkey map.
//
// The library does not own a file syntax. Hosts either construct Config
// directly, decode a generic map with FromMap, or use Load for the plain
// YAML layout the podium CLI ships with.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/orchestra-dev/podium/pkg/domain"
)

// Config is the complete frontend configuration, treated as already valid.
// Structural issues (unknown references, conflicting hotkeys) surface later
// as non-fatal diagnostics, never as load errors.
type Config struct {
	// Commands lists every triggerable command, in display order.
	Commands []domain.CommandDefinition `yaml:"commands" mapstructure:"commands"`

	// Watchers configures the filesystem watches.
	Watchers []domain.WatchSpec `yaml:"watchers,omitempty" mapstructure:"watchers"`

	// Hotkeys maps command name -> key token ("1"-"9", "a"-"z", "f1"-"f12").
	Hotkeys map[string]string `yaml:"hotkeys,omitempty" mapstructure:"hotkeys"`

	// FileMarker overrides the substring identifying filesystem-origin
	// triggers for provenance classification. Empty means the default.
	FileMarker string `yaml:"file_marker,omitempty" mapstructure:"file_marker"`
}

// CommandNames returns the configured names in order.
func (c Config) CommandNames() []string {
	names := make([]string, 0, len(c.Commands))
	for _, def := range c.Commands {
		names = append(names, def.Name)
	}
	return names
}

// HasCommand reports whether name is configured.
func (c Config) HasCommand(name string) bool {
	for _, def := range c.Commands {
		if def.Name == name {
			return true
		}
	}
	return false
}

// FromMap decodes a host-supplied generic map (the output of whatever
// parser the host already ran) into a typed Config.
func FromMap(raw map[string]any) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode config map: %w", err)
	}
	return cfg, nil
}

// Load reads the CLI's YAML config layout from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
