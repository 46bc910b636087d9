package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bricklake/bricksync/actions"
)

var syncCmd = &cobra.Command{
	Use:   "sync <SQL-optionally-quoted>",
	Short: "Export a Databricks query result to S3 and load it into Snowflake",
	Long: `Run one sync end to end: export the query result to the shared S3 location
via a Databricks job, then load the staged parquet files into a per-run
Snowflake schema. The command follows the run and prints its log.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("supply the SQL statement to sync")
		}
		syncConfig.Sql = strings.Join(args, " ")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		syncConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunSync(&syncConfig)
	},
}

var syncConfig = actions.RunSyncConfig{
	LogLevel: "error",
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().SortFlags = false
	syncCmd.SilenceUsage = true // avoid dumping command help when the sync fails.
	syncCmd.Flags().StringVar(&syncConfig.SourceTable, "source-table", "", "Table whose declared column types shape the Snowflake load table")
	syncCmd.Flags().StringVar(&syncConfig.LogLevel, "log-level", "error", "Log level: trace, debug, info, warn, error")
	syncCmd.Flags().StringVar(&syncConfig.ConfigFile, "config", "", "Path to an optional YAML config file")
}
