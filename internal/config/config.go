package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Redis   RedisConfig
	Game    GameConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string
	AppID   string
	GuildID string // Optional: for guild-specific commands
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GameConfig holds the rules-engine tuning knobs
type GameConfig struct {
	// Stamina defaults applied when a pool is created on first need
	StaminaMax           int
	StaminaRegenInterval time.Duration
	StaminaRegenAmount   int

	// Cost of a single grid move
	MoveCost int

	// Window during which duplicate move/trigger requests are dropped
	DedupWindow time.Duration

	// Per-category creation caps
	MaxActions int
	MaxItems   int
	MaxStores  int

	// Hard cap on follow-up action chains
	MaxFollowUpDepth int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			AppID:   os.Getenv("DISCORD_APP_ID"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Game: GameConfig{
			StaminaMax:           getEnvAsIntOrDefault("STAMINA_MAX", 5),
			StaminaRegenInterval: getEnvAsDurationOrDefault("STAMINA_REGEN_INTERVAL", 10*time.Minute),
			StaminaRegenAmount:   getEnvAsIntOrDefault("STAMINA_REGEN_AMOUNT", 1),
			MoveCost:             getEnvAsIntOrDefault("MOVE_COST", 1),
			DedupWindow:          getEnvAsDurationOrDefault("DEDUP_WINDOW", 3*time.Second),
			MaxActions:           getEnvAsIntOrDefault("MAX_ACTIONS", 100),
			MaxItems:             getEnvAsIntOrDefault("MAX_ITEMS", 200),
			MaxStores:            getEnvAsIntOrDefault("MAX_STORES", 25),
			MaxFollowUpDepth:     getEnvAsIntOrDefault("MAX_FOLLOWUP_DEPTH", 8),
		},
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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
