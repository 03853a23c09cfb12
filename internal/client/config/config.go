package config

import "time"

// Config holds runtime settings for the WorthBoard CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend TCP endpoint.
//   - ChatPort: UDP port every project chat group communicates on.
//   - DialTimeout: per-attempt connect timeout; attempts are retried with
//     exponential backoff.
type Config struct {
	ServerEndpointAddr string
	ChatPort           int
	DialTimeout        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:13730"
	c.ChatPort = 13731
	c.DialTimeout = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
