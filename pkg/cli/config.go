package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"csvmerge/internal/config"
)

// UserConfig represents ~/.csvmerge/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile represents a single named configuration profile.
type Profile struct {
	Engine     string `yaml:"engine,omitempty"`
	LogLevel   string `yaml:"log-level,omitempty"`
	Outfile    string `yaml:"outfile,omitempty"`
	Output     string `yaml:"output,omitempty"`
	S3Endpoint string `yaml:"s3-endpoint,omitempty"`
	S3Region   string `yaml:"s3-region,omitempty"`
	S3KeyID    string `yaml:"s3-key-id,omitempty"`
	S3Secret   string `yaml:"s3-secret,omitempty"`
	S3URLStyle string `yaml:"s3-url-style,omitempty"`
}

// ActiveProfile returns the profile to use based on the override or current-profile.
// A missing current profile yields an empty profile; a missing override is an error.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	if override != "" {
		p, ok := c.Profiles[override]
		if !ok {
			return Profile{}, fmt.Errorf("profile %q not found", override)
		}
		return p, nil
	}
	return c.Profiles[c.CurrentProfile], nil
}

// applyTo copies every set field of p onto cfg.
func (p Profile) applyTo(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Engine, p.Engine)
	set(&cfg.LogLevel, p.LogLevel)
	set(&cfg.Outfile, p.Outfile)
	set(&cfg.Output, p.Output)
	set(&cfg.S3.Endpoint, p.S3Endpoint)
	set(&cfg.S3.Region, p.S3Region)
	set(&cfg.S3.KeyID, p.S3KeyID)
	set(&cfg.S3.Secret, p.S3Secret)
	set(&cfg.S3.URLStyle, p.S3URLStyle)
}

// ConfigDir returns the path to ~/.csvmerge/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".csvmerge")
}

// ConfigPath returns the path to ~/.csvmerge/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.csvmerge/config.yaml.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// SaveUserConfig writes ~/.csvmerge/config.yaml.
func SaveUserConfig(cfg *UserConfig) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}
