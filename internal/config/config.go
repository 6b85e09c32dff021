package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret   string   `mapstructure:"JWT_SECRET"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Priority triage (external advisory oracle) settings.
	TriageEnabled          bool    `mapstructure:"TRIAGE_ENABLED"`
	TriageAPIKey           string  `mapstructure:"TRIAGE_API_KEY"`
	TriageModel            string  `mapstructure:"TRIAGE_MODEL"`
	TriageTimeoutMS        int     `mapstructure:"TRIAGE_TIMEOUT_MS"`
	TriageUrgentThreshold  float64 `mapstructure:"TRIAGE_URGENT_THRESHOLD"`
	TriageRoutineThreshold float64 `mapstructure:"TRIAGE_ROUTINE_THRESHOLD"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TRIAGE_ENABLED", true)
	v.SetDefault("TRIAGE_MODEL", "claude-3-5-sonnet-20241022")
	v.SetDefault("TRIAGE_TIMEOUT_MS", 5000)
	v.SetDefault("TRIAGE_URGENT_THRESHOLD", 5000)
	v.SetDefault("TRIAGE_ROUTINE_THRESHOLD", 500)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("TRIAGE_ENABLED")
	v.BindEnv("TRIAGE_API_KEY")
	v.BindEnv("TRIAGE_MODEL")
	v.BindEnv("TRIAGE_TIMEOUT_MS")
	v.BindEnv("TRIAGE_URGENT_THRESHOLD")
	v.BindEnv("TRIAGE_ROUTINE_THRESHOLD")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret is mandatory so that claim submission and adjudication carry a
// real authenticated identity. Triage settings are bounds-checked so a typo'd
// timeout cannot silently disable the oracle race or hold intake for minutes.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV is %q", c.Env)
	}
	if c.TriageTimeoutMS < 2000 || c.TriageTimeoutMS > 10000 {
		return fmt.Errorf("TRIAGE_TIMEOUT_MS must be between 2000 and 10000, got %d", c.TriageTimeoutMS)
	}
	if c.TriageUrgentThreshold <= 0 || c.TriageRoutineThreshold <= 0 {
		return fmt.Errorf("triage cost thresholds must be positive")
	}
	if c.TriageRoutineThreshold >= c.TriageUrgentThreshold {
		return fmt.Errorf("TRIAGE_ROUTINE_THRESHOLD (%g) must be below TRIAGE_URGENT_THRESHOLD (%g)",
			c.TriageRoutineThreshold, c.TriageUrgentThreshold)
	}
	return nil
}
