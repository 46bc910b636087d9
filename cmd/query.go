package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bricklake/bricksync/actions"
)

var queryCmd = &cobra.Command{
	Use:   "query <SQL-optionally-quoted>",
	Short: "Run a SQL statement against the configured warehouse",
	Long: `Execute a statement by supplying the SQL as plain arguments. It's only
necessary to wrap the statement in quotes if it contains special characters
that will be interpreted by your shell. You can use a dry-run to check
formatting. Results are returned as CSV lines.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("supply the SQL statement to run")
		}
		queryCfg.Query = strings.Join(args, " ")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		queryCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunQuery(&queryCfg)
	},
}

var queryCfg = actions.QueryConfig{
	LogLevel: "error",
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().SortFlags = false
	queryCmd.SilenceUsage = true // avoid dumping command help when a SQL syntax error occurs.
	queryCmd.Flags().StringVar(&queryCfg.LogLevel, "log-level", "error", "Log level: trace, debug, info, warn, error")
	queryCmd.Flags().BoolVar(&queryCfg.DryRun, "dry-run", false, "Print the SQL without executing it")
	queryCmd.Flags().BoolVar(&queryCfg.PrintHeader, "print-header", false, "Print a CSV header line before the rows")
	queryCmd.Flags().StringVar(&queryCfg.ConfigFile, "config", "", "Path to an optional YAML config file")
}
