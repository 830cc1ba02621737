// Package cmd implements the chatwidget command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/logger"
)

var configDirFlag string

var rootCmd = &cobra.Command{
	Use:   "chatwidget",
	Short: "Chat widget backend and terminal client",
	Long: `chatwidget serves an embeddable chat widget together with the /chat
backend it talks to, and can chat with any compatible endpoint from the
terminal.

Replies are markdown, revealed one character at a time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed("config-dir") {
			return nil
		}
		config.SetConfigDir(configDirFlag)
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return initLogger(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Config directory (default ~/.chatwidget)")
	rootCmd.AddGroup(&cobra.Group{ID: "internal", Title: "Tools:"})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// InitLogger configures the global logger from cfg.
func InitLogger(cfg *config.Config) error {
	return initLogger(cfg)
}

func initLogger(cfg *config.Config) error {
	dir, _ := config.ConfigDir()
	return logger.Init(cfg.BuildLoggerConfig(), dir)
}
