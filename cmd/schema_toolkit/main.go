// Package main provides the entry point for the ISO 20022 schema toolkit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schema_toolkit",
	Short: "ISO 20022 schema analysis toolkit",
	Long:  "Schema Toolkit resolves ISO 20022 XSD message definitions into flat field models, compares schema versions for breaking changes, and generates field-mapping templates for payment integration projects.",
}

var (
	rootConfigPath string
	rootVerbose    bool
	rootOutputDir  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed progress information")
	rootCmd.PersistentFlags().StringVarP(&rootOutputDir, "output-dir", "o", "", "Directory for generated artifacts (default \"output\")")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
