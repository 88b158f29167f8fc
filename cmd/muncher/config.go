package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-muncher/internal/config"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the muncher config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.FilePath(".")
		}
		return initConfig(path, initForce, cmd.OutOrStdout())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig writes the defaults to path. An existing file is kept unless force is set.
func initConfig(path string, force bool, out io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.AlreadyExistsf("config file %s already exists, use --force to overwrite", path)
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Write(path); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Wrote default config to %s\n", path)
	return nil
}
