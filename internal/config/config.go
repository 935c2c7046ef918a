package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"hyperion/internal/types"
)

const (
	DefaultPath = "config.toml"

	EnvToken     = "DISCORD_TOKEN"
	EnvChannelID = "HYPERION_CHANNEL_ID"
)

type Config struct {
	Bot     BotConfig              `toml:"bot"`
	Discord DiscordConfig          `toml:"discord"`
	HTTP    HTTPConfig             `toml:"http"`
	Storage StorageConfig          `toml:"storage"`
	Groups  map[string]GroupConfig `toml:"groups"`
	Sources []SourceConfig         `toml:"sources"`
}

type BotConfig struct {
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	RunOnce  bool   `toml:"run_once"`
}

type DiscordConfig struct {
	Token        string   `toml:"token"`
	ChannelID    string   `toml:"channel_id"`
	ReadyTimeout Duration `toml:"ready_timeout"`
}

type HTTPConfig struct {
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout"`
}

type StorageConfig struct {
	Type      string   `toml:"type"`
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// GroupConfig is a shared polling timer. Sources in a group are fetched in
// the order they are declared, Stagger apart.
type GroupConfig struct {
	Interval Duration `toml:"interval"`
	Stagger  Duration `toml:"stagger"`
}

type SourceConfig struct {
	Name         string   `toml:"name"`
	Mode         string   `toml:"mode"`
	Endpoint     string   `toml:"endpoint"`
	BaseURL      string   `toml:"base_url"`
	Selector     string   `toml:"selector"`
	Label        string   `toml:"label"`
	Interval     Duration `toml:"interval"`
	Group        string   `toml:"group"`
	Template     string   `toml:"template"`
	TemplateFile string   `toml:"template_file"`
	Disabled     bool     `toml:"disabled"`
}

// Source converts the entry into the immutable runtime description. Grouped
// sources take their interval from the group.
func (s SourceConfig) Source(groups map[string]GroupConfig) types.Source {
	interval := s.Interval.Duration
	if g, ok := groups[s.Group]; ok && s.Group != "" {
		interval = g.Interval.Duration
	}

	return types.Source{
		Name:         s.Name,
		Mode:         types.FetchMode(s.Mode),
		Endpoint:     s.Endpoint,
		BaseURL:      s.BaseURL,
		Selector:     s.Selector,
		Label:        s.Label,
		Interval:     interval,
		Group:        s.Group,
		Template:     s.Template,
		TemplateFile: s.TemplateFile,
	}
}

// Duration decodes TOML strings such as "30m" or "1.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load reads the config at path. A missing file at DefaultPath falls back to
// the built-in configuration; any other missing path is an error.
func Load(path string) (*Config, error) {
	var config *Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		config = &Config{}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		slog.Info("No config file found, using built-in defaults", "path", path)
		config = Default()
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func applyEnv(config *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		config.Discord.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvChannelID)); v != "" {
		config.Discord.ChannelID = v
	}
}

func validateConfig(config *Config) error {
	if config.Bot.Name == "" {
		config.Bot.Name = "hyperion"
	}

	if config.Bot.LogLevel == "" {
		config.Bot.LogLevel = "info"
	}
	if _, err := ParseLogLevel(config.Bot.LogLevel); err != nil {
		return err
	}

	if config.Discord.Token == "" {
		return fmt.Errorf("discord token is required (set %s)", EnvToken)
	}
	if config.Discord.ChannelID == "" {
		return fmt.Errorf("discord channel_id is required (set %s)", EnvChannelID)
	}
	if config.Discord.ReadyTimeout.Duration <= 0 {
		config.Discord.ReadyTimeout.Duration = time.Minute
	}

	if config.HTTP.Timeout.Duration <= 0 {
		config.HTTP.Timeout.Duration = 20 * time.Second
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "none"
	}
	switch config.Storage.Type {
	case "none":
	case "sqlite":
		if config.Storage.Path == "" {
			config.Storage.Path = "./hyperion.db"
		}
		if config.Storage.Retention.Duration <= 0 {
			config.Storage.Retention.Duration = 30 * 24 * time.Hour
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}

	for name, group := range config.Groups {
		if group.Interval.Duration <= 0 {
			return fmt.Errorf("group %s: interval must be positive", name)
		}
		if group.Stagger.Duration < 0 {
			return fmt.Errorf("group %s: stagger must not be negative", name)
		}
	}

	seen := make(map[string]bool)
	enabled := 0
	for i := range config.Sources {
		src := &config.Sources[i]
		if src.Name == "" {
			return fmt.Errorf("source #%d: name is required", i+1)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name: %s", src.Name)
		}
		seen[src.Name] = true

		if err := validateSource(src, config.Groups); err != nil {
			return fmt.Errorf("source %s: %w", src.Name, err)
		}
		if !src.Disabled {
			enabled++
		}
	}

	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	return nil
}

func validateSource(src *SourceConfig, groups map[string]GroupConfig) error {
	if src.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	mode := types.FetchMode(src.Mode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", src.Mode)
	}
	if src.BaseURL == "" {
		if mode == types.ModeHTML {
			return fmt.Errorf("base_url is required for html sources")
		}
		origin, err := endpointOrigin(src.Endpoint)
		if err != nil {
			return err
		}
		src.BaseURL = origin
	}

	if src.Group != "" {
		if _, ok := groups[src.Group]; !ok {
			return fmt.Errorf("unknown group %q", src.Group)
		}
		return nil
	}

	if src.Interval.Duration <= 0 {
		return fmt.Errorf("interval must be positive when no group is set")
	}
	return nil
}

// endpointOrigin returns scheme://host of an absolute endpoint. Feed and rss
// sources use it to resolve relative links when base_url is unset.
func endpointOrigin(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base_url is required when endpoint %q is not absolute", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}

func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}
