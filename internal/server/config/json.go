package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/worthboard/internal/flagx"
	"github.com/dmitrijs2005/worthboard/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "8h" and integer nanoseconds. After
// unmarshalling, set fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DataDir               string         `json:"data_dir"`
	ChatBaseAddress       string         `json:"chat_base_address"`
	ChatPoolSize          int            `json:"chat_pool_size"`
	ChatPort              int            `json:"chat_port"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. Fields absent from the
// file keep their current values. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
	if c.ChatBaseAddress != "" {
		config.ChatBaseAddress = c.ChatBaseAddress
	}
	if c.ChatPoolSize != 0 {
		config.ChatPoolSize = c.ChatPoolSize
	}
	if c.ChatPort != 0 {
		config.ChatPort = c.ChatPort
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
}
