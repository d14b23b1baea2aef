package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the game rules and service settings shared by the binaries.
type Config struct {
	Game struct {
		MaxPlayers     int           `yaml:"max_players"`
		StaleRoomAfter time.Duration `yaml:"stale_room_after"`
		ReaperSchedule string        `yaml:"reaper_schedule"`
	} `yaml:"game"`
	Rankings struct {
		DefaultLimit int           `yaml:"default_limit"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
	} `yaml:"rankings"`
	Auth struct {
		SessionTTL  time.Duration `yaml:"session_ttl"`
		AdminEmails []string      `yaml:"admin_emails"`
		JWTSecret   string        `yaml:"-"`
	} `yaml:"auth"`
	Share struct {
		PublicURL string `yaml:"public_url"`
	} `yaml:"share"`

	Port        string `yaml:"-"`
	GatewayPort string `yaml:"-"`
	NatsURL     string `yaml:"-"`
	RedisAddr   string `yaml:"-"`
	LogLevel    string `yaml:"-"`
}

// Default returns the settings used when config.yaml omits a value.
func Default() *Config {
	var c Config
	c.Game.MaxPlayers = 6
	c.Game.StaleRoomAfter = 24 * time.Hour
	c.Game.ReaperSchedule = "@hourly"
	c.Rankings.DefaultLimit = 10
	c.Rankings.CacheTTL = 30 * time.Second
	c.Auth.SessionTTL = 72 * time.Hour
	c.Share.PublicURL = "http://localhost:3000"
	c.Port = "8080"
	c.GatewayPort = "8081"
	c.NatsURL = "nats://localhost:4222"
	c.LogLevel = "info"
	return &c
}

// Load reads path on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Port = getEnv("PORT", c.Port)
	c.GatewayPort = getEnv("GATEWAY_PORT", c.GatewayPort)
	c.NatsURL = getEnv("NATS_URL", c.NatsURL)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Share.PublicURL = getEnv("PUBLIC_URL", c.Share.PublicURL)
	c.Game.MaxPlayers = getEnvAsInt("MAX_PLAYERS", c.Game.MaxPlayers)
	if admins := os.Getenv("ADMIN_EMAILS"); admins != "" {
		c.Auth.AdminEmails = splitList(admins)
	}
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Game.MaxPlayers < 1 {
		return fmt.Errorf("game.max_players must be positive, got %d", c.Game.MaxPlayers)
	}
	if c.Game.StaleRoomAfter <= 0 {
		return fmt.Errorf("game.stale_room_after must be positive")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	return nil
}

// RequireJWTSecret fails when no signing key was configured.
func (c *Config) RequireJWTSecret() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
