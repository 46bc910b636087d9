package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bricklake/bricksync/actions"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API serving warehouse metadata, queries and the sync
orchestrator. Connection settings come from the environment, optionally
overlaid with a YAML config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunServe(&serveConfig)
	},
}

var serveConfig = actions.ServeConfig{
	LogLevel: "info",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().StringVar(&serveConfig.LogLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	serveCmd.Flags().StringVar(&serveConfig.ConfigFile, "config", "", "Path to an optional YAML config file")
}
