// Package config handles application configuration management.
// It supports YAML files and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultStorageKey is the key the status snapshot is stored under
const DefaultStorageKey = "evaStatusSite_v1"

// Config holds all application configuration
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Matrix    MatrixConfig    `mapstructure:"matrix" yaml:"matrix"`
	Anthropic AnthropicConfig `mapstructure:"anthropic" yaml:"anthropic"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// StorageConfig selects and configures the snapshot slot
type StorageConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend"` // file, sqlite, redis or memory
	Key           string `mapstructure:"key" yaml:"key"`
	DataDir       string `mapstructure:"data_dir" yaml:"data_dir"`
	SQLitePath    string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`
}

// MatrixConfig holds Matrix connection settings
type MatrixConfig struct {
	Homeserver  string `mapstructure:"homeserver" yaml:"homeserver"`
	UserID      string `mapstructure:"user_id" yaml:"user_id"`
	DeviceID    string `mapstructure:"device_id" yaml:"device_id"`
	AccessToken string `mapstructure:"access_token" yaml:"access_token"`
	NextBatch   string `mapstructure:"next_batch" yaml:"next_batch"`
	RoomID      string `mapstructure:"room_id" yaml:"room_id"` // Default room for `share`
}

// AnthropicConfig holds Anthropic API settings
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.key", DefaultStorageKey)
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("anthropic.model", "claude-3-haiku-20240307")
	v.SetDefault("anthropic.max_tokens", 200)
	v.SetDefault("log.level", "info")

	// Determine config directory
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}

	v.SetDefault("storage.data_dir", configDir)
	v.SetDefault("storage.sqlite_path", filepath.Join(configDir, "evastatus.db"))

	// Keys without a default are still picked up from the file and env
	for _, key := range []string{
		"matrix.homeserver", "matrix.user_id", "matrix.device_id",
		"matrix.access_token", "matrix.next_batch", "matrix.room_id",
		"anthropic.api_key",
	} {
		v.SetDefault(key, "")
	}

	// Configure viper to read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	// Environment variable overrides, e.g. EVASTATUS_STORAGE_BACKEND
	v.SetEnvPrefix("EVASTATUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("matrix.access_token", "EVASTATUS_MATRIX_ACCESS_TOKEN", "MATRIX_ACCESS_TOKEN")
	_ = v.BindEnv("anthropic.api_key", "EVASTATUS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to determine config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	v := viper.New()
	v.Set("storage", cfg.Storage)
	v.Set("matrix", cfg.Matrix)
	v.Set("anthropic", cfg.Anthropic)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Set restrictive permissions on config file (contains credentials)
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	if configDir := os.Getenv("EVASTATUS_CONFIG_DIR"); configDir != "" {
		return configDir, nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "evastatus"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "evastatus"), nil
}

// GetConfigDir returns the configuration directory (exported for other packages)
func GetConfigDir() (string, error) {
	return getConfigDir()
}
