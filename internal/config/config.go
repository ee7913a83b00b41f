package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	EventSubject       string
	JWTSecret          string
	TokenLifetime      time.Duration
	BcryptCost         int
	ResetTokenTTL      time.Duration
	PythonPath         string
	AnalysisScriptPath string
	AnalysisTimeout    time.Duration
	ReportCacheTTL     time.Duration
	AuthRateLimit      int
	AuthRateWindow     time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AVALIA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Avalia API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("event.subject", "avalia.evaluations.created")
	v.SetDefault("jwt.lifetime", "1h")
	v.SetDefault("bcrypt.cost", 10)
	v.SetDefault("reset.token_ttl", "1h")
	v.SetDefault("python.path", "python3")
	v.SetDefault("analysis.script_path", "scripts/analyze_evaluations.py")
	v.SetDefault("analysis.timeout", "30s")
	v.SetDefault("report.cache_ttl", "5m")
	v.SetDefault("auth.rate_limit", 20)
	v.SetDefault("auth.rate_window", "1m")

	lifetime, err := parseDuration(v.GetString("jwt.lifetime"), time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid token lifetime: %w", err)
	}

	resetTTL, err := parseDuration(v.GetString("reset.token_ttl"), time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid reset token ttl: %w", err)
	}

	analysisTimeout, err := parseDuration(v.GetString("analysis.timeout"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid analysis timeout: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("report.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v.GetString("auth.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth rate window: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		EventSubject:       v.GetString("event.subject"),
		JWTSecret:          v.GetString("jwt.secret"),
		TokenLifetime:      lifetime,
		BcryptCost:         v.GetInt("bcrypt.cost"),
		ResetTokenTTL:      resetTTL,
		PythonPath:         v.GetString("python.path"),
		AnalysisScriptPath: v.GetString("analysis.script_path"),
		AnalysisTimeout:    analysisTimeout,
		ReportCacheTTL:     cacheTTL,
		AuthRateLimit:      v.GetInt("auth.rate_limit"),
		AuthRateWindow:     rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = 10
	}

	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = 20
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}
