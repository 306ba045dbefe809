// Command portfolio-cli is a terminal client for the portfolio API: sign
// in, read the comment thread, post, edit and delete comments and replies.
//
// The session token is kept in a file under the user config directory, so
// a login survives across invocations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string

	rootCmd = &cobra.Command{
		Use:           "portfolio-cli",
		Short:         "Client for the portfolio comment thread",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("PORTFOLIO_SERVER", "http://localhost:8080"),
		"base URL of the portfolio server")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
