package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/green-analyzer/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with an interactive wizard",
	Long:  `Runs an interactive wizard to pick the analysis provider, data directory and HTTP settings, and writes them to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
