// Package config handles configuration for the server component, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the worthboard server.
//
// Fields:
//   - EndpointAddr: bind address for the TCP session endpoint.
//   - DataDir: directory holding the persisted users file and project dirs.
//   - ChatBaseAddress / ChatPoolSize: first multicast chat address and the
//     number of consecutive addresses assignable to projects.
//   - ChatPort: UDP port every project chat uses.
//   - SecretKey: HMAC secret for signing session tokens (HS256). Do not use
//     the default in prod.
//   - TokenValidityDuration: session token lifetime.
type Config struct {
	EndpointAddr          string
	DataDir               string
	ChatBaseAddress       string
	ChatPoolSize          int
	ChatPort              int
	SecretKey             string
	TokenValidityDuration time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":13730"
	c.DataDir = "res"
	c.ChatBaseAddress = "239.255.224.0"
	c.ChatPoolSize = 8192
	c.ChatPort = 13731
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 8 * time.Hour
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
