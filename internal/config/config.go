package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gsarma/boltbot/internal/godbolt"
)

// Config is the runtime configuration shared by the server and the CLI.
// Values come from an optional YAML file, then .env, then the environment.
type Config struct {
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	Godbolt GodboltConfig `yaml:"godbolt"`
	Bot     BotConfig     `yaml:"bot"`
}

// GodboltConfig holds the remote compiler service settings.
type GodboltConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Cooldown scopes.
const (
	CooldownPerUser = "user"
	CooldownGlobal  = "global"
)

// commandSlack covers queueing for an outbound slot on top of the call itself.
const commandSlack = 5 * time.Second

// BotConfig holds the command dispatcher settings.
type BotConfig struct {
	Prefix        string        `yaml:"prefix"`
	Cooldown      time.Duration `yaml:"cooldown"`
	CooldownScope string        `yaml:"cooldown_scope"`
	MaxConcurrent int64         `yaml:"max_concurrent"`
	PageSize      int           `yaml:"page_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:     "8080",
		Env:      "development",
		LogLevel: "info",
		Godbolt: GodboltConfig{
			URL:          "https://godbolt.org",
			Timeout:      30 * time.Second,
			Retries:      1,
			RetryBackoff: 250 * time.Millisecond,
		},
		Bot: BotConfig{
			Prefix:        "!godbolt",
			Cooldown:      2 * time.Second,
			CooldownScope: CooldownPerUser,
			MaxConcurrent: 4,
			PageSize:      20,
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// BOLTBOT_CONFIG is consulted; a missing file is only an error when a
// path was given explicitly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("BOLTBOT_CONFIG")
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.Godbolt.URL = getEnv("GODBOLT_URL", cfg.Godbolt.URL)
	cfg.Godbolt.Timeout = getDuration("GODBOLT_TIMEOUT", cfg.Godbolt.Timeout)
	cfg.Godbolt.Retries = getInt("GODBOLT_RETRIES", cfg.Godbolt.Retries)
	cfg.Godbolt.RetryBackoff = getDuration("GODBOLT_RETRY_BACKOFF", cfg.Godbolt.RetryBackoff)
	cfg.Bot.Prefix = getEnv("COMMAND_PREFIX", cfg.Bot.Prefix)
	cfg.Bot.Cooldown = getDuration("COMMAND_COOLDOWN", cfg.Bot.Cooldown)
	cfg.Bot.CooldownScope = getEnv("COMMAND_COOLDOWN_SCOPE", cfg.Bot.CooldownScope)
	cfg.Bot.MaxConcurrent = int64(getInt("MAX_CONCURRENT", int(cfg.Bot.MaxConcurrent)))
	cfg.Bot.PageSize = getInt("PAGE_SIZE", cfg.Bot.PageSize)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the dispatcher and client cannot work with.
func (c *Config) Validate() error {
	if c.Godbolt.URL == "" {
		return fmt.Errorf("godbolt url is required")
	}
	if c.Godbolt.Timeout <= 0 {
		return fmt.Errorf("godbolt timeout must be > 0, got %s", c.Godbolt.Timeout)
	}
	if c.Godbolt.Retries < 0 || c.Godbolt.Retries > godbolt.MaxRetries {
		return fmt.Errorf("godbolt retries must be between 0 and %d, got %d", godbolt.MaxRetries, c.Godbolt.Retries)
	}
	if c.Godbolt.RetryBackoff < 0 {
		return fmt.Errorf("godbolt retry backoff must be >= 0, got %s", c.Godbolt.RetryBackoff)
	}
	if c.Bot.CooldownScope != CooldownPerUser && c.Bot.CooldownScope != CooldownGlobal {
		return fmt.Errorf("cooldown scope must be %q or %q, got %q", CooldownPerUser, CooldownGlobal, c.Bot.CooldownScope)
	}
	if c.Bot.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be >= 1, got %d", c.Bot.MaxConcurrent)
	}
	if c.Bot.PageSize < 1 {
		return fmt.Errorf("page size must be >= 1, got %d", c.Bot.PageSize)
	}
	return nil
}

// CallBudget is the longest one remote call can take: every attempt
// running into the timeout plus the backoff waits between attempts.
func (g GodboltConfig) CallBudget() time.Duration {
	total := time.Duration(g.Retries+1) * g.Timeout
	wait := g.RetryBackoff
	for i := 0; i < g.Retries; i++ {
		total += wait
		wait *= 2
	}
	return total
}

// CommandTimeout bounds one webhook command, including the wait for an
// outbound slot. The server's write deadline must stay above it.
func (c *Config) CommandTimeout() time.Duration {
	return c.Godbolt.CallBudget() + commandSlack
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}
