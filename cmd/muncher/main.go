// Package main is the entry point for the muncher CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "muncher",
	Short: "Import third-party game content into compendium collections",
	Long: `Muncher downloads items and monsters through the import proxy, normalizes them,
synthesizes automation effects and stores them in a compendium collection.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), verbose)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .muncher/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(monstersCmd)
	rootCmd.AddCommand(listCmd)
}
