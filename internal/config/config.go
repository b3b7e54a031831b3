package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Completion CompletionConfig `mapstructure:"completion"`
	Planner    PlannerConfig    `mapstructure:"planner"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// CompletionConfig configures the OpenAI-compatible completion backend.
// An empty APIKey is a valid state: generation is disabled and every
// consumer falls back to its deterministic path.
type CompletionConfig struct {
	APIKey        string        `mapstructure:"api_key"` // env COMPLETION_API_KEY
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	ExerciseModel string        `mapstructure:"exercise_model"` // empty means Model
	Temperature   float64       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Retries       int           `mapstructure:"retries"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// PlannerConfig tunes the scheduling policy and the compile stage.
type PlannerConfig struct {
	HorizonDays            int     `mapstructure:"horizon_days"`
	MaxConsecutiveTraining int     `mapstructure:"max_consecutive_training_days"`
	TaperWindowDays        float64 `mapstructure:"taper_window_days"`
	MaxParallelCompile     int     `mapstructure:"max_parallel_compile"`
	Refine                 bool    `mapstructure:"refine"`
	RefineModel            string  `mapstructure:"refine_model"`
}

type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"` // robfig/cron expression, e.g., "@daily"
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override file values, with nested keys
	// flattened: completion.api_key -> COMPLETION_API_KEY.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "microcycle")
	viper.SetDefault("completion.model", "gpt-4o-mini")
	viper.SetDefault("completion.temperature", 0.7)
	viper.SetDefault("completion.max_tokens", 2000)
	viper.SetDefault("completion.retries", 2)
	viper.SetDefault("completion.timeout", "45s")
	viper.SetDefault("planner.horizon_days", 7)
	viper.SetDefault("planner.max_consecutive_training_days", 3)
	viper.SetDefault("planner.taper_window_days", 1.5)
	viper.SetDefault("planner.max_parallel_compile", 4)
	viper.SetDefault("planner.refine", false)
	viper.SetDefault("scheduler.enabled", false)
	viper.SetDefault("scheduler.spec", "@daily")

	err = viper.ReadInConfig()
	// A missing config file is fine: defaults plus env vars are a complete
	// configuration. Any other read error is real.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
