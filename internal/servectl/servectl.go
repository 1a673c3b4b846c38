// Package servectl implements the operator CLI for a running servingd
// daemon: health probing, ad-hoc invocations, deployment-parameter
// resolution and configuration sanity reports.
package servectl

import (
	"fmt"
	"os"
)

// Config carries the settings shared by every subcommand.
type Config struct {
	// Addr is the base URL of the servingd daemon.
	Addr string
	// TimeoutSec bounds one HTTP call; 0 disables (streams can be long).
	TimeoutSec int
}

// DefaultConfig reads the environment-backed defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:       envStr("SERVINGD_ADDR", "http://127.0.0.1:8000"),
		TimeoutSec: envInt("SERVECTL_TIMEOUT", 0),
	}
}

// Main runs the CLI and returns the process exit code.
func Main(args []string) int {
	root := buildRootCmdWith(DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "servectl:", err)
		return 1
	}
	return 0
}

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
