package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by applyEnv.
const (
	EnvAddr      = "PREPCHECK_ADDR"
	EnvPort      = "PORT"
	EnvLogLevel  = "PREPCHECK_LOG_LEVEL"
	EnvLogFormat = "PREPCHECK_LOG_FORMAT"
	EnvLogFile   = "PREPCHECK_LOG_FILE"
	EnvParallel  = "PREPCHECK_PARALLEL"
	EnvOrigin    = "PREPCHECK_ALLOWED_ORIGIN"
)

// loadDotEnv reads a .env file into the process environment if present.
// Variables already set are left alone.
func loadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// applyEnv applies environment overrides to the config.
func applyEnv(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv(EnvPort)); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Addr = port
	}
	if addr := strings.TrimSpace(os.Getenv(EnvAddr)); addr != "" {
		cfg.Server.Addr = addr
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOrigin)); v != "" {
		cfg.Server.AllowedOrigin = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvParallel)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvParallel, err)
		}
		cfg.Analysis.Parallel = b
	}
	return nil
}
