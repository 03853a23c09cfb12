package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/worthboard/internal/flagx"
	"github.com/dmitrijs2005/worthboard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s" or
// as integer nanoseconds. After parsing, values are copied into the runtime
// Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	ChatPort           int            `json:"chat_port"`
	DialTimeout        timex.Duration `json:"dial_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file named by the
// -c/-config flag. Fields absent from the file keep their current values.
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.ChatPort != 0 {
		cfg.ChatPort = jc.ChatPort
	}
	if jc.DialTimeout.Duration != 0 {
		cfg.DialTimeout = time.Duration(jc.DialTimeout.Duration)
	}
}
