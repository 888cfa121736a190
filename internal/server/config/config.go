// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the Confidant server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - UsersFile: path of the JSON user database (jsonfile backend).
//   - StorageBackend: "jsonfile" or "bolt".
//   - BoltPath: path of the bbolt database (bolt backend).
//   - SecretKey: HMAC secret for signing session cookies (HS256). Do not use
//     test defaults in prod.
//   - SessionValidity: lifetime of a signed session cookie.
//   - APIKey / BaseURL / Model: completion provider settings; APIKey falls
//     back to the ANTHROPIC_API_KEY environment variable.
//   - CompletionTimeout: per-request budget for the completion call.
//   - UseMockLLM: substitute the deterministic mock completer (dev/tests).
type Config struct {
	Addr              string
	UsersFile         string
	StorageBackend    string
	BoltPath          string
	SecretKey         string
	SessionValidity   time.Duration
	APIKey            string
	BaseURL           string
	Model             string
	CompletionTimeout time.Duration
	UseMockLLM        bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.UsersFile = "users.json"
	c.StorageBackend = "jsonfile"
	c.BoltPath = "users.db"
	c.SecretKey = "secretKey"
	c.SessionValidity = 720 * time.Hour
	c.APIKey = ""
	c.BaseURL = ""
	c.Model = "claude-3-7-sonnet-latest"
	c.CompletionTimeout = 60 * time.Second
	c.UseMockLLM = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. The
// completion API key can also come from the environment.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg
}
