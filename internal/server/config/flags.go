package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/confidant/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-f string   users JSON file path
//	-b string   storage backend ("jsonfile" or "bolt")
//	-d string   bbolt database path
//	-s string   session cookie HMAC secret key
//	-v int      session cookie validity, minutes
//	-k string   completion provider API key
//	-e string   completion provider base endpoint
//	-m string   completion model identifier
//	-t int      completion timeout, seconds
//	-x          use the mock completer instead of the provider
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-b", "-d", "-s", "-v", "-k", "-e", "-m", "-t", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.UsersFile, "f", config.UsersFile, "users JSON file path")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (jsonfile or bolt)")
	fs.StringVar(&config.BoltPath, "d", config.BoltPath, "bbolt database path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("v", int(config.SessionValidity.Minutes()), "session_validity (in minutes)")

	fs.StringVar(&config.APIKey, "k", config.APIKey, "completion provider API key")
	fs.StringVar(&config.BaseURL, "e", config.BaseURL, "completion provider base endpoint")
	fs.StringVar(&config.Model, "m", config.Model, "completion model identifier")

	completionTimeout := fs.Int("t", int(config.CompletionTimeout.Seconds()), "completion_timeout (in seconds)")

	fs.BoolVar(&config.UseMockLLM, "x", config.UseMockLLM, "use mock completer")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidity = time.Duration(*sessionValidity) * time.Minute
	config.CompletionTimeout = time.Duration(*completionTimeout) * time.Second
}
