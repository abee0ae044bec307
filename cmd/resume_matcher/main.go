// Package main provides the entry point for the resume matching agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	jsonLog  bool
	debugLog bool
)

var rootCmd = &cobra.Command{
	Use:   "resume_matcher",
	Short: "Resume matching agent",
	Long:  "Resume matcher indexes stored resumes into a vector collection and ranks them against open job descriptions, marking each application selected or rejected.",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
