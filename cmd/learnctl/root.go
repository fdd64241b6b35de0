package main

import (
	"github.com/spf13/cobra"

	"github.com/khoahotran/studyplan/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "learnctl",
	Short:         "Operational tasks for the studyplan API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", ".", "Directory containing config.yaml")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	dir, _ := cmd.Flags().GetString("config")
	return config.LoadConfig(dir)
}
