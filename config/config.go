// Package config loads server configuration: embedded defaults, an optional
// YAML file, then .env and ARENA_* environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"foodarena/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	World    WorldConfig    `yaml:"world"`
	Tick     TickConfig     `yaml:"tick"`
	Viewport ViewportConfig `yaml:"viewport"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Addr              string `yaml:"addr"`
	StaticDir         string `yaml:"static_dir"`
	PublicURL         string `yaml:"public_url"` // encoded by /qr.png
	MaxConnsPerIP     int    `yaml:"max_conns_per_ip"`
	MaxTotalConns     int    `yaml:"max_total_conns"`
	MaxMessagesPerSec int    `yaml:"max_messages_per_sec"`
}

type WorldConfig struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Speed       float64 `yaml:"speed"`
	InitialFood int     `yaml:"initial_food"`
	MaxNameLen  int     `yaml:"max_name_len"`
	DefaultName string  `yaml:"default_name"`
}

type TickConfig struct {
	Period            time.Duration `yaml:"period"`
	LeaderboardPeriod time.Duration `yaml:"leaderboard_period"`
	LeaderboardSize   int           `yaml:"leaderboard_size"`
}

type ViewportConfig struct {
	CanvasWidth  float64 `yaml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height"`
	Margin       float64 `yaml:"margin"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type StoreConfig struct {
	Path          string        `yaml:"path"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	FlushBatch    int           `yaml:"flush_batch"`
}

type AdminConfig struct {
	PasswordHash string        `yaml:"password_hash"`
	Secret       string        `yaml:"secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// Load builds a Config from the embedded defaults, the YAML file at path
// (if non-empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays ARENA_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"ARENA_ADDR":                &c.Server.Addr,
		"ARENA_STATIC_DIR":          &c.Server.StaticDir,
		"ARENA_PUBLIC_URL":          &c.Server.PublicURL,
		"ARENA_LOG_FILE":            &c.Log.File,
		"ARENA_LOG_LEVEL":           &c.Log.Level,
		"ARENA_STORE_PATH":          &c.Store.Path,
		"ARENA_ADMIN_PASSWORD_HASH": &c.Admin.PasswordHash,
		"ARENA_ADMIN_SECRET":        &c.Admin.Secret,
	}
	for key, dst := range overrides {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Tick.LeaderboardPeriod <= 0 {
		return fmt.Errorf("tick.leaderboard_period must be positive, got %v", c.Tick.LeaderboardPeriod)
	}
	if c.Viewport.Margin < 0 {
		return fmt.Errorf("viewport.margin must not be negative, got %v", c.Viewport.Margin)
	}
	if c.Admin.PasswordHash != "" && c.Admin.TokenTTL <= 0 {
		return fmt.Errorf("admin.token_ttl must be positive, got %v", c.Admin.TokenTTL)
	}
	if err := c.WorldParams().Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

// WorldParams derives the immutable simulation parameters
func (c *Config) WorldParams() world.Config {
	return world.Config{
		Width:           c.World.Width,
		Height:          c.World.Height,
		TickPeriod:      c.Tick.Period,
		Speed:           c.World.Speed,
		CanvasWidth:     c.Viewport.CanvasWidth,
		CanvasHeight:    c.Viewport.CanvasHeight,
		ViewportWidth:   c.Viewport.CanvasWidth + c.Viewport.Margin,
		ViewportHeight:  c.Viewport.CanvasHeight + c.Viewport.Margin,
		InitialFood:     c.World.InitialFood,
		MaxNameLen:      c.World.MaxNameLen,
		DefaultName:     c.World.DefaultName,
		LeaderboardSize: c.Tick.LeaderboardSize,
	}
}
