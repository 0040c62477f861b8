// Package main provides the entry point for the document generator CLI and
// HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docgen_agent",
	Short: "HTML document template generator",
	Long:  "Regenerates the sections of an HTML document template against a project context using an LLM, producing a customized document while preserving the template's structure.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
