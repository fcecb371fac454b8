package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the file.
const (
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvCommunityDSN  = "SALES_AGENT_COMMUNITY_DSN"
	EnvRedisAddr     = "SALES_AGENT_REDIS_ADDR"
	EnvRedisPassword = "SALES_AGENT_REDIS_PASSWORD"
	EnvIdentity      = "SALES_AGENT_IDENTITY"
	EnvHeadless      = "SALES_AGENT_HEADLESS"
)

// Duration is a time.Duration written as "10s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the global ~/.salesagent/config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`
	// Identity is the user's own phone number or display name, used to
	// find replies to their messages.
	Identity  string          `toml:"identity"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Monitor   MonitorConfig   `toml:"monitor"`
	Watcher   WatcherConfig   `toml:"watcher"`
	Browser   BrowserConfig   `toml:"browser"`
	Community CommunityConfig `toml:"community"`
	Redis     RedisConfig     `toml:"redis"`
}

type GeminiConfig struct {
	APIKey     string   `toml:"api_key"`
	Model      string   `toml:"model"`
	MaxRetries int      `toml:"max_retries"`
	Backoff    Duration `toml:"backoff"`
}

type MonitorConfig struct {
	MaxScrolls  int      `toml:"max_scrolls"`
	ScrollPause Duration `toml:"scroll_pause"`
	Settle      Duration `toml:"settle"`
	InterGroup  Duration `toml:"inter_group"`
	InterCycle  Duration `toml:"inter_cycle"`
	EmptyWait   Duration `toml:"empty_wait"`
	// Timezone interprets message timestamps, e.g. "Africa/Nairobi".
	Timezone string `toml:"timezone"`
}

type WatcherConfig struct {
	Disabled bool     `toml:"disabled"`
	Interval Duration `toml:"interval"`
}

type BrowserConfig struct {
	Headless  bool   `toml:"headless"`
	RemoteURL string `toml:"remote_url"`
}

type CommunityConfig struct {
	// DSN is a postgres:// URL or a SQLite file path. Empty uses the
	// profile's community.db.
	DSN string `toml:"dsn"`
}

type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      Duration `toml:"ttl"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-flash"
	}
	if c.Gemini.MaxRetries == 0 {
		c.Gemini.MaxRetries = 3
	}
	if c.Gemini.Backoff.Duration == 0 {
		c.Gemini.Backoff.Duration = time.Second
	}
	if c.Monitor.MaxScrolls == 0 {
		c.Monitor.MaxScrolls = 10
	}
	setDefault(&c.Monitor.ScrollPause, time.Second)
	setDefault(&c.Monitor.Settle, 5*time.Second)
	setDefault(&c.Monitor.InterGroup, 10*time.Second)
	setDefault(&c.Monitor.InterCycle, time.Minute)
	setDefault(&c.Monitor.EmptyWait, 30*time.Second)
	setDefault(&c.Watcher.Interval, 2*time.Minute)
	setDefault(&c.Redis.TTL, 7*24*time.Hour)
}

func setDefault(d *Duration, v time.Duration) {
	if d.Duration <= 0 {
		d.Duration = v
	}
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadEnv loads KEY=value pairs from the given .env files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays secrets and deployment settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvGeminiKey); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(EnvCommunityDSN); v != "" {
		c.Community.DSN = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(EnvIdentity); v != "" {
		c.Identity = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvHeadless)); err == nil {
		c.Browser.Headless = v
	}
}

// Location returns the configured timezone, or time.Local.
func (c *Config) Location() *time.Location {
	if c.Monitor.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Monitor.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
