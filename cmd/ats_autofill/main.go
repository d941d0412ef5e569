// Package main provides the entry point for the ATS resume autofill CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ats_autofill",
	Short: "ATS resume autofill service",
	Long: "ATS resume autofill sends resume files to a parsing webhook, normalizes the response " +
		"into a candidate draft, and merges it into candidate forms without discarding recruiter edits.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print draft summaries and enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
