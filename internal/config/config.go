package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port         int    `mapstructure:"port"`
	DatabasePath string `mapstructure:"database_path"`
	// PostgresDSN switches the durable stores to PostgreSQL when non-empty;
	// otherwise the embedded SQLite file at DatabasePath is used.
	PostgresDSN    string   `mapstructure:"postgres_dsn"`
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// FrequentShareThreshold is the fraction of global requests a language
	// needs to be promoted to frequent (0.05 = 5%).
	FrequentShareThreshold float64 `mapstructure:"frequent_share_threshold"`
	// FallbackLanguages is the ordered chain consulted before falling back to
	// generation. These are also the predefined (always-frequent) languages.
	FallbackLanguages []string `mapstructure:"fallback_languages"`

	PreloadMaxLessons int `mapstructure:"preload_max_lessons"` // Lessons fetched per preload run; 0 = default 100
	CleanupMaxLessons int `mapstructure:"cleanup_max_lessons"` // Lessons swept per demoted language; 0 = default 500

	// Scheduler calendar rules.
	PreloadHour     int   `mapstructure:"preload_hour"`     // Daily preload fire hour (UTC)
	EvaluationDays  []int `mapstructure:"evaluation_days"`  // Days of month for the evaluation cycle
	EvaluationHour  int   `mapstructure:"evaluation_hour"`  // Fire hour (UTC) on those days
	SchedulerTickMS int   `mapstructure:"scheduler_tick_ms"` // Tick granularity; 0 = default 60s

	// External AI collaborators.
	TranslationURL     string  `mapstructure:"translation_url"`
	GenerationURL      string  `mapstructure:"generation_url"`
	AITimeoutSec       int     `mapstructure:"ai_timeout_sec"`        // Per-call timeout on the request path; 0 = default 30
	AIRateLimitPerSec  float64 `mapstructure:"ai_rate_limit_per_sec"` // Token bucket rate for AI calls; 0 = no limit
	AIRateLimitBurst   int     `mapstructure:"ai_rate_limit_burst"`   // Token bucket burst; 0 = no limit
	HotCacheSize       int     `mapstructure:"hot_cache_size"`        // In-process LRU entries; 0 = cache disabled
	ShutdownTimeoutSec int     `mapstructure:"shutdown_timeout_sec"`  // Graceful shutdown wait
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/lessonforge/")
	viper.AddConfigPath("$HOME/.lessonforge")
	viper.AddConfigPath(".")

	// Defaults
	viper.SetDefault("port", 8080)
	viper.SetDefault("database_path", "./lessonforge.db")
	viper.SetDefault("postgres_dsn", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("allowed_origins", []string{"*"})
	viper.SetDefault("frequent_share_threshold", 0.05)
	viper.SetDefault("fallback_languages", []string{"en", "he", "ar"})
	viper.SetDefault("preload_max_lessons", 100)
	viper.SetDefault("cleanup_max_lessons", 500)
	viper.SetDefault("preload_hour", 3)
	viper.SetDefault("evaluation_days", []int{1, 15})
	viper.SetDefault("evaluation_hour", 2)
	viper.SetDefault("scheduler_tick_ms", 60_000)
	viper.SetDefault("translation_url", "")
	viper.SetDefault("generation_url", "")
	viper.SetDefault("ai_timeout_sec", 30)
	viper.SetDefault("ai_rate_limit_per_sec", 0) // 0 = disabled
	viper.SetDefault("ai_rate_limit_burst", 0)
	viper.SetDefault("hot_cache_size", 1024)
	viper.SetDefault("shutdown_timeout_sec", 15)

	// Environment variables
	viper.SetEnvPrefix("LESSONFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
