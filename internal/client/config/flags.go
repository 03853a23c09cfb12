package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/worthboard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the backend server (default from Config)
//	-p int      UDP port of the project chat groups (default from Config)
//	-t int      connect timeout in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.IntVar(&cfg.ChatPort, "p", cfg.ChatPort, "UDP port of the project chat groups")
	dialTimeout := fs.Int("t", int(cfg.DialTimeout.Seconds()), "connect timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DialTimeout = time.Duration(*dialTimeout) * time.Second
}
