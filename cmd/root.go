package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/green-analyzer/internal/config"
)

var (
	cfgFile string
	verbose bool
	logger  = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "green-analyzer",
	Short: "Guided renewable-energy analysis for a property or a sales pitch",
	Long: `green-analyzer walks a homeowner, organizer, policymaker, developer or
sales professional through a short questionnaire, then runs a set of
grounded AI analyses (permitting, solar, wind, hydro, storage, financing
and more) and keeps the results as an autosaved session and named projects.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// API keys usually live in .env; a missing file is fine.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
