package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	v.SetDefault("store.url", "sqlite://doppel.db")
	v.SetDefault("engine.selection", SelectionDeclared)
	v.SetDefault("engine.matching", MatchingStrict)
	v.SetDefault("engine.recursive", true)
	v.SetDefault("engine.cycles", CyclesFail)
	v.SetDefault("engine.max_depth", 32)

	// Bind environment variables with DOPPEL_ prefix
	v.SetEnvPrefix("DOPPEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject credentials in config files
	// Passwords must be environment-only per 12-factor principles
	if err := validateNoCredentialsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		StoreURL: v.GetString("store.url"),
		Engine: EngineConfig{
			Selection: v.GetString("engine.selection"),
			Matching:  v.GetString("engine.matching"),
			Recursive: v.GetBool("engine.recursive"),
			Cycles:    v.GetString("engine.cycles"),
			MaxDepth:  v.GetInt("engine.max_depth"),
			Include:   v.GetStringSlice("engine.include"),
			Exclude:   v.GetStringSlice("engine.exclude"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks the store URL and engine bounds early, before any
// command touches the database or builds a plan.
func validateConfig(cfg *Config) error {
	if cfg.StoreURL == "" {
		return fmt.Errorf("store.url must not be empty")
	}
	if cfg.Engine.MaxDepth <= 0 {
		return fmt.Errorf("engine.max_depth must be positive, got %d", cfg.Engine.MaxDepth)
	}
	return nil
}

// validateNoCredentialsInConfig enforces environment-only database passwords
// (12-factor principle).
func validateNoCredentialsInConfig(v *viper.Viper) error {
	if !v.InConfig("store.url") {
		return nil
	}
	u, err := url.Parse(v.GetString("store.url"))
	if err != nil {
		// Scheme problems surface when the store opens
		return nil
	}
	if _, has := u.User.Password(); has {
		return fmt.Errorf("database passwords not allowed in config files (use DOPPEL_STORE_URL environment variable)")
	}
	return nil
}
