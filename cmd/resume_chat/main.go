// Package main provides the entry point for the résumé chat terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	apiURL        string
	storageDriver string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "resume_chat",
	Short: "Résumé builder chat client",
	Long: "resume_chat interviews you through a conversational backend, mirrors the collected answers " +
		"in a live form, and exports or submits the finished résumé profile.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the chat backend (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storageDriver, "storage", "", "Storage driver: memory, sqlite, postgres or redis (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
