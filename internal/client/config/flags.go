package config

import (
	"flag"
	"os"
	"time"

	"secureshare/internal/flagx"
)

// parseFlags populates selected Config fields from the command line.
//
// Supported flags:
//
//	-a string   base URL of the backend server
//	-d string   path to the local metadata database
//	-t int      request timeout in seconds
//
// Args are filtered through flagx.FilterArgs so flags owned by other
// packages do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path to the local metadata database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
