package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/worthboard/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   TCP bind address (e.g., ":13730")
//	-f string   data directory for persisted snapshots
//	-m string   first multicast chat address
//	-n int      chat address pool size
//	-p int      chat UDP port
//	-s string   session token HMAC secret key
//	-t int      session token validity, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-m", "-n", "-p", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DataDir, "f", config.DataDir, "data directory")
	fs.StringVar(&config.ChatBaseAddress, "m", config.ChatBaseAddress, "first multicast chat address")
	fs.IntVar(&config.ChatPoolSize, "n", config.ChatPoolSize, "chat address pool size")
	fs.IntVar(&config.ChatPort, "p", config.ChatPort, "chat UDP port")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
}
