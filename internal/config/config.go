// Package config resolves csvmerge settings from defaults and environment variables.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Merge engines.
const (
	EngineNative = "native"
	EngineDuckDB = "duckdb"
)

// Summary output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// DefaultOutfile is written when no output location is given.
const DefaultOutfile = "combined.csv"

// Environment variable names.
const (
	EnvEngine     = "CSVMERGE_ENGINE"
	EnvLogLevel   = "CSVMERGE_LOG_LEVEL"
	EnvOutfile    = "CSVMERGE_OUTFILE"
	EnvOutput     = "CSVMERGE_OUTPUT"
	EnvS3Endpoint = "CSVMERGE_S3_ENDPOINT"
	EnvS3Region   = "CSVMERGE_S3_REGION"
	EnvS3KeyID    = "CSVMERGE_S3_KEY_ID"
	EnvS3Secret   = "CSVMERGE_S3_SECRET"
	EnvS3URLStyle = "CSVMERGE_S3_URL_STYLE"
)

// S3Config holds credentials for s3:// input and output locations.
type S3Config struct {
	Endpoint string // host of an S3-compatible service; empty means AWS
	Region   string
	KeyID    string
	Secret   string
	URLStyle string // "path" (default) or "vhost"
}

// Configured returns true if static credentials and a region are set.
func (s *S3Config) Configured() bool {
	return s.KeyID != "" && s.Secret != "" && s.Region != ""
}

// Config holds the settings for one merge run.
type Config struct {
	Engine   string // merge engine: native (default) or duckdb
	LogLevel string // log level: debug, info, warn, error (default "info")
	Outfile  string // output location (default combined.csv)
	Output   string // summary format: text (default) or json
	S3       S3Config

	// Warnings collects non-fatal problems found while resolving settings.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// Defaults returns a Config with every field at its default.
func Defaults() *Config {
	return &Config{
		Engine:   EngineNative,
		LogLevel: "info",
		Outfile:  DefaultOutfile,
		Output:   OutputText,
		S3:       S3Config{URLStyle: "path"},
	}
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineNative, EngineDuckDB:
	default:
		return fmt.Errorf("unsupported engine %q: use %q or %q", c.Engine, EngineNative, EngineDuckDB)
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unsupported output format %q: use %q or %q", c.Output, OutputText, OutputJSON)
	}
	if c.Outfile == "" {
		return fmt.Errorf("output location must not be empty")
	}
	switch c.S3.URLStyle {
	case "", "path", "vhost":
	default:
		return fmt.Errorf("unsupported S3 URL style %q: use 'path' or 'vhost'", c.S3.URLStyle)
	}
	return nil
}

// LoadFromEnv returns the defaults overridden by environment variables.
func LoadFromEnv() *Config {
	cfg := Defaults()
	ApplyEnv(cfg)
	return cfg
}

// ApplyEnv overrides cfg with any CSVMERGE_* variables that are set.
func ApplyEnv(cfg *Config) {
	setFromEnv(&cfg.Engine, EnvEngine)
	setFromEnv(&cfg.LogLevel, EnvLogLevel)
	setFromEnv(&cfg.Outfile, EnvOutfile)
	setFromEnv(&cfg.Output, EnvOutput)
	setFromEnv(&cfg.S3.Endpoint, EnvS3Endpoint)
	setFromEnv(&cfg.S3.Region, EnvS3Region)
	setFromEnv(&cfg.S3.KeyID, EnvS3KeyID)
	setFromEnv(&cfg.S3.Secret, EnvS3Secret)
	setFromEnv(&cfg.S3.URLStyle, EnvS3URLStyle)

	if (cfg.S3.KeyID == "") != (cfg.S3.Secret == "") {
		cfg.Warnings = append(cfg.Warnings, "only one of CSVMERGE_S3_KEY_ID and CSVMERGE_S3_SECRET is set; s3:// locations will fail")
	}
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
