package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/scribbly/internal/config"
	"github.com/ayusman/scribbly/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "scribbly",
	Short: "Scribbly is an air canvas driven by hand tracking",
	Long: `Scribbly tracks your index finger through the webcam and turns it into a brush.
Hover over the panel buttons to undo, redo, clear, change color or erase.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the settings database (default ~/.scribbly)")
}

// loadConfig reads the config file named by --config and applies --data-dir.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

// openStore opens the settings database, creating the data directory.
func openStore(cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	return st, nil
}
