// Package main provides the cryptoq CLI: an HTTP server and a one-shot
// query command over the same engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "cryptoq",
	Short: "Answer free-text crypto market questions",
	Long: `cryptoq resolves a free-text question into a structured intent, pulls data
from an ordered chain of market data providers and writes an answer.

Available subcommands:
  serve - run the HTTP API
  ask   - answer one query and exit`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a yaml config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
