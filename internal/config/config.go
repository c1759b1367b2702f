// Package config loads the streak bot's settings.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional YAML file, and environment variables (a .env file is loaded
// into the environment first). The merged result is checked against an
// embedded CUE schema so every bad field is reported at once.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Environment names.
const (
	EnvProd = "prod"
	EnvDev  = "dev"
	EnvTest = "test"
)

// Config is the complete, immutable run configuration.
type Config struct {
	Environment string   `yaml:"environment" json:"environment"`
	GroupMe     GroupMe  `yaml:"groupme" json:"groupme"`
	Retry       Retry    `yaml:"retry" json:"retry"`
	Store       Store    `yaml:"store" json:"store"`
	Schedule    Schedule `yaml:"schedule" json:"schedule"`
}

// GroupMe identifies the group and the channels the bot reads and posts to.
type GroupMe struct {
	BaseURL         string    `yaml:"base_url" json:"base_url"`
	Token           string    `yaml:"token" json:"token"`
	GroupID         string    `yaml:"group_id" json:"group_id"`
	CheckinChannels []Channel `yaml:"checkin_channels" json:"checkin_channels"`
	StreaksChannel  string    `yaml:"streaks_channel" json:"streaks_channel"`
	MessageLimit    int       `yaml:"message_limit" json:"message_limit"`
}

// Channel is a subgroup scanned for check-ins.
type Channel struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Label is the channel name, or its ID when unnamed.
func (c Channel) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Retry bounds chat API retries.
type Retry struct {
	Attempts int           `yaml:"attempts" json:"attempts"`
	Delay    time.Duration `yaml:"delay" json:"delay"`
}

// Store selects the persistence backend.
type Store struct {
	Backend  string `yaml:"backend" json:"backend"`
	Path     string `yaml:"path" json:"path"`
	DSN      string `yaml:"dsn" json:"dsn"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Key      string `yaml:"key" json:"key"`
}

// Schedule defines which day a run processes and how it is titled.
type Schedule struct {
	Timezone     string `yaml:"timezone" json:"timezone"`
	DayStartHour int    `yaml:"day_start_hour" json:"day_start_hour"`
	Title        string `yaml:"title" json:"title"`
}

// Default returns the built-in defaults. Credentials and channel IDs
// have no defaults.
func Default() Config {
	return Config{
		Environment: EnvDev,
		GroupMe: GroupMe{
			BaseURL:      "https://api.groupme.com/v3",
			MessageLimit: 100,
		},
		Retry: Retry{
			Attempts: 3,
			Delay:    2 * time.Second,
		},
		Store: Store{
			Backend: "file",
			Path:    "streaks.json",
			Key:     "streaks",
		},
		Schedule: Schedule{
			Timezone:     "America/New_York",
			DayStartHour: 5,
			Title:        "TAWG Streaks",
		},
	}
}

// DryRun reports whether writes and posts should be skipped.
// Only the prod environment mutates state.
func (c Config) DryRun() bool {
	return c.Environment != EnvProd
}

// Location loads the schedule's time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	out := c
	out.GroupMe.CheckinChannels = append([]Channel(nil), c.GroupMe.CheckinChannels...)
	if out.GroupMe.Token != "" {
		out.GroupMe.Token = "REDACTED"
	}
	if out.Store.Password != "" {
		out.Store.Password = "REDACTED"
	}
	if out.Store.DSN != "" {
		out.Store.DSN = "REDACTED"
	}
	return out
}

// Validate checks the configuration against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", strings.TrimSpace(cueerrors.Details(err, nil)))
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// Path is an optional YAML file.
	Path string

	// EnvFile is loaded into the environment if it exists. Variables
	// already set are not overridden.
	EnvFile string
}

// Load builds and validates the configuration.
func Load(opts LoadOptions) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Default()
	if opts.Path != "" {
		if err := decodeFile(opts.Path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeFile overlays a YAML file on cfg, rejecting unknown fields.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}
