// Package config holds the coordinator's TOML configuration: the
// hotkey binding, search limits, command profiles, and the runtime
// paths. The daemon reads snapshots through a Store; the only mutation
// path is an explicit apply after a reload.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/grishmahat/orion/internal/protocol"
)

// Config is the full on-disk configuration. It arrives validated; the
// coordinator never mutates it as a side effect of request handling.
type Config struct {
	Hotkey          Hotkey          `toml:"hotkey"`
	Search          Search          `toml:"search"`
	Profiles        []Profile       `toml:"profiles"`
	CurrentProfile  string          `toml:"current_profile"`
	LogLevel        string          `toml:"log_level"`
	LogFile         string          `toml:"log_file"`
	SocketPath      string          `toml:"ipc_socket_path"`
	CommandPrefixes []CommandPrefix `toml:"command_prefixes"`
}

// Hotkey names the global binding that toggles the popup.
type Hotkey struct {
	Key       string   `toml:"key"`
	Modifiers []string `toml:"modifiers"`
}

// Search bounds query resolution.
type Search struct {
	MaxResults    int `toml:"max_results"`
	SearchDelayMs int `toml:"search_delay_ms"`
}

// Profile is a named command collection; one is active at a time.
type Profile struct {
	Name     string    `toml:"name"`
	Commands []Command `toml:"commands"`
}

// Command mirrors protocol.Command with TOML tags.
type Command struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Action      Action   `toml:"action"`
	Keywords    []string `toml:"keywords"`
}

type Action struct {
	Type  string `toml:"type"`
	Value string `toml:"value"`
}

// CommandPrefix groups commands behind a typed prefix.
type CommandPrefix struct {
	Prefix   string    `toml:"prefix"`
	Commands []Command `toml:"commands"`
}

// Message converts a configured command to its protocol form.
func (c Command) Message() protocol.Command {
	return protocol.Command{
		Name:        c.Name,
		Description: c.Description,
		Action:      protocol.Action{Type: protocol.ActionType(c.Action.Type), Value: c.Action.Value},
		Keywords:    append([]string(nil), c.Keywords...),
	}
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Hotkey: Hotkey{
			Key:       "space",
			Modifiers: []string{"ctrl", "alt"},
		},
		Search: Search{
			MaxResults:    10,
			SearchDelayMs: 200,
		},
		Profiles: []Profile{
			{Name: "Default"},
		},
		CurrentProfile: "Default",
		LogLevel:       "info",
		SocketPath:     "orion.sock",
	}
}

// Validate enforces the same bounds the settings UI promises.
func (c *Config) Validate() error {
	if c.CurrentProfile == "" {
		return fmt.Errorf("current_profile cannot be empty")
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 100 {
		return fmt.Errorf("max_results must be between 1 and 100, got %d", c.Search.MaxResults)
	}
	if c.Search.SearchDelayMs < 100 || c.Search.SearchDelayMs > 5000 {
		return fmt.Errorf("search_delay_ms must be between 100 and 5000, got %d", c.Search.SearchDelayMs)
	}
	for _, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile name cannot be empty")
		}
	}
	return nil
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save validates and writes the config file.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// CurrentProfileCommands returns the active profile's commands in
// protocol form, or nil when the profile does not exist.
func (c *Config) CurrentProfileCommands() []protocol.Command {
	for _, p := range c.Profiles {
		if p.Name != c.CurrentProfile {
			continue
		}
		cmds := make([]protocol.Command, 0, len(p.Commands))
		for _, cmd := range p.Commands {
			cmds = append(cmds, cmd.Message())
		}
		return cmds
	}
	return nil
}

// AddProfile appends an empty profile with the given name.
func (c *Config) AddProfile(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	for _, p := range c.Profiles {
		if p.Name == name {
			return fmt.Errorf("profile %q already exists", name)
		}
	}
	c.Profiles = append(c.Profiles, Profile{Name: name})
	return nil
}

// RemoveProfile deletes a profile. The active profile cannot be
// removed.
func (c *Config) RemoveProfile(name string) error {
	if name == c.CurrentProfile {
		return fmt.Errorf("cannot remove the current profile")
	}
	kept := c.Profiles[:0]
	for _, p := range c.Profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	c.Profiles = kept
	return nil
}

// UpdateSetting applies one settings-UI change by key name. An
// out-of-range value leaves the config untouched.
func (c *Config) UpdateSetting(key string, value int) error {
	prev := c.Search
	switch key {
	case "max_results":
		c.Search.MaxResults = value
	case "search_delay_ms":
		c.Search.SearchDelayMs = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := c.Validate(); err != nil {
		c.Search = prev
		return err
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Hotkey.Modifiers = append([]string(nil), c.Hotkey.Modifiers...)
	out.Profiles = cloneProfiles(c.Profiles)
	out.CommandPrefixes = make([]CommandPrefix, len(c.CommandPrefixes))
	for i, cp := range c.CommandPrefixes {
		out.CommandPrefixes[i] = CommandPrefix{
			Prefix:   cp.Prefix,
			Commands: cloneCommands(cp.Commands),
		}
	}
	return &out
}

func cloneProfiles(in []Profile) []Profile {
	out := make([]Profile, len(in))
	for i, p := range in {
		out[i] = Profile{Name: p.Name, Commands: cloneCommands(p.Commands)}
	}
	return out
}

func cloneCommands(in []Command) []Command {
	out := make([]Command, len(in))
	for i, c := range in {
		out[i] = c
		out[i].Keywords = append([]string(nil), c.Keywords...)
	}
	return out
}
