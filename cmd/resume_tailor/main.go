// Package main provides the resume_tailor command line tool and HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "Tailor resume bullets to a job posting",
	Long: "resume_tailor matches a structured resume against a job's skills, proposes " +
		"ranked bullet rewrites that only use verified skills, and records approved changes.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
