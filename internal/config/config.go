// Package config loads server configuration from an optional YAML file with
// environment-variable overrides.
//
// Precedence, lowest to highest: built-in defaults, the YAML file, then
// environment variables. A deployment can therefore check in a config file
// with the boring values and inject secrets through the environment only.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs to start.
type Config struct {
	Port      int
	DBPath    string
	StaticDir string
	MusicDir  string

	// JWTSecret signs session tokens. Required; there is no insecure
	// default to fall back to.
	JWTSecret string

	// SessionTTL controls how long an issued session stays valid.
	SessionTTL time.Duration

	// Google OAuth client. All three empty means OAuth sign-in is simply
	// not offered; partial configuration is an error.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// fileConfig is the YAML shape. Durations are strings ("720h", "30m")
// because yaml.v3 has no native time.Duration decoding.
type fileConfig struct {
	Port               int    `yaml:"port"`
	DBPath             string `yaml:"db_path"`
	StaticDir          string `yaml:"static_dir"`
	MusicDir           string `yaml:"music_dir"`
	JWTSecret          string `yaml:"jwt_secret"`
	SessionTTL         string `yaml:"session_ttl"`
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	GoogleCallbackURL  string `yaml:"google_callback_url"`
}

// Default returns the built-in configuration baseline.
func Default() Config {
	return Config{
		Port:       8080,
		DBPath:     "data/portfolio.db",
		StaticDir:  "web/static",
		MusicDir:   "web/music",
		SessionTTL: 30 * 24 * time.Hour,
	}
}

// Load builds the effective configuration. path may be empty or point to a
// file that does not exist; both mean "defaults plus environment".
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file, fall through to env overrides.
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
			if err := cfg.applyFile(fc); err != nil {
				return Config{}, fmt.Errorf("config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyFile overlays the non-empty fields of a parsed YAML file.
func (c *Config) applyFile(fc fileConfig) error {
	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.StaticDir != "" {
		c.StaticDir = fc.StaticDir
	}
	if fc.MusicDir != "" {
		c.MusicDir = fc.MusicDir
	}
	if fc.JWTSecret != "" {
		c.JWTSecret = fc.JWTSecret
	}
	if fc.SessionTTL != "" {
		ttl, err := time.ParseDuration(fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl %q: %w", fc.SessionTTL, err)
		}
		c.SessionTTL = ttl
	}
	if fc.GoogleClientID != "" {
		c.GoogleClientID = fc.GoogleClientID
	}
	if fc.GoogleClientSecret != "" {
		c.GoogleClientSecret = fc.GoogleClientSecret
	}
	if fc.GoogleCallbackURL != "" {
		c.GoogleCallbackURL = fc.GoogleCallbackURL
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("MUSIC_DIR"); v != "" {
		c.MusicDir = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL value %q: %w", v, err)
		}
		c.SessionTTL = ttl
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		c.GoogleClientSecret = v
	}
	if v := os.Getenv("GOOGLE_CALLBACK_URL"); v != "" {
		c.GoogleCallbackURL = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required (set JWT_SECRET)")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}

	// OAuth is all-or-nothing: a half-configured client would fail at the
	// worst moment, mid-callback.
	if c.GoogleEnabled() {
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" || c.GoogleCallbackURL == "" {
			return fmt.Errorf("google OAuth requires client id, client secret and callback URL together")
		}
	}

	return nil
}

// GoogleEnabled reports whether any part of the Google OAuth client is
// configured. After validate, "any" implies "all".
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" || c.GoogleClientSecret != "" || c.GoogleCallbackURL != ""
}
