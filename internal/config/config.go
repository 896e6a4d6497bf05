package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/todo/internal/app"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Delete  DeleteConfig  `toml:"delete"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeyConfig     `toml:"keys"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the logfmt file sink used in dev mode.
type DevFileConfig struct {
	Enabled bool `toml:"enabled"`
	// Dir is resolved against the workspace root when relative; empty uses the platform log dir.
	Dir string `toml:"dir"`
}

type DeleteConfig struct {
	Match app.DeleteMatch `toml:"match"`
}

type UIConfig struct {
	Title       string `toml:"title"`
	Placeholder string `toml:"placeholder"`
	CharLimit   int    `toml:"char_limit"`
}

type KeyConfig struct {
	Add    string `toml:"add"`
	Toggle string `toml:"toggle"`
	Edit   string `toml:"edit"`
	Delete string `toml:"delete"`
	Clear  string `toml:"clear"`
	Grab   string `toml:"grab"`
	Copy   string `toml:"copy"`
}

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".todo/log",
			},
		},
		Delete: DeleteConfig{
			Match: app.DeleteMatchText,
		},
		UI: UIConfig{
			Title:       "TO-DO",
			Placeholder: "Type a task",
			CharLimit:   120,
		},
		Keys: KeyConfig{
			Add:    "a",
			Toggle: "x",
			Edit:   "e",
			Delete: "d",
			Clear:  "C",
			Grab:   "m",
			Copy:   "y",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg.normalized(), nil
}

// normalized returns c with the free-form enum fields in canonical form.
// Callers must validate first.
func (c Config) normalized() Config {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Delete.Match, _ = app.ParseDeleteMatch(string(c.Delete.Match))
	return c
}

func (c Config) Validate() error {
	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if _, err := app.ParseDeleteMatch(string(c.Delete.Match)); err != nil {
		return fmt.Errorf("invalid delete.match: %q", c.Delete.Match)
	}

	if c.UI.CharLimit < 0 {
		return errors.New("ui.char_limit must be >= 0")
	}

	seen := map[string]string{}
	for _, binding := range c.Keys.bindings() {
		value := strings.TrimSpace(binding.value)
		if value == "" {
			continue
		}
		if prev, ok := seen[value]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", binding.name, prev, value)
		}
		seen[value] = binding.name
	}

	return nil
}

// namedKey pairs a key config field with its TOML name.
type namedKey struct {
	name  string
	value string
}

func (k KeyConfig) bindings() []namedKey {
	return []namedKey{
		{name: "add", value: k.Add},
		{name: "toggle", value: k.Toggle},
		{name: "edit", value: k.Edit},
		{name: "delete", value: k.Delete},
		{name: "clear", value: k.Clear},
		{name: "grab", value: k.Grab},
		{name: "copy", value: k.Copy},
	}
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteDefault writes the default config to path unless a file already exists there.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	encoded, err := toml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
