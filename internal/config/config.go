package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Redis   RedisConfig
	World   WorldConfig
	Wait    WaitConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token     string
	AppID     string
	GuildID   string // Optional: for guild-specific commands
	ChannelID string // Channel for public announcements
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	URL string // Empty means in-memory repositories
}

// WorldConfig holds the world-level concentration settings
type WorldConfig struct {
	ConcentrationIcon   string
	UseItemImage        bool
	PrependEffectLabels bool
	Locale              string
	GameMasterIDs       []string
}

// WaitConfig controls the wait-for-concentration poll
type WaitConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:     os.Getenv("DISCORD_TOKEN"),
			AppID:     os.Getenv("DISCORD_APP_ID"),
			GuildID:   os.Getenv("DISCORD_GUILD_ID"),
			ChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		World: WorldConfig{
			ConcentrationIcon:   os.Getenv("CN_CONCENTRATION_ICON"),
			UseItemImage:        getEnvAsBoolOrDefault("CN_USE_ITEM_IMAGE", false),
			PrependEffectLabels: getEnvAsBoolOrDefault("CN_PREPEND_EFFECT_LABELS", false),
			Locale:              getEnvOrDefault("CN_LOCALE", "en-US"),
			GameMasterIDs:       getEnvAsList("CN_GM_USER_IDS"),
		},
		Wait: WaitConfig{
			Interval: getEnvAsDurationOrDefault("CN_WAIT_INTERVAL", 100*time.Millisecond),
			Timeout:  getEnvAsDurationOrDefault("CN_WAIT_TIMEOUT", 10*time.Second),
		},
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID is required")
	}
	if cfg.Wait.Interval <= 0 || cfg.Wait.Timeout < cfg.Wait.Interval {
		return nil, fmt.Errorf("CN_WAIT_INTERVAL must be positive and not exceed CN_WAIT_TIMEOUT")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
