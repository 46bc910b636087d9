package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bricklake/bricksync/actions"
)

var createStageCfg = actions.CreateStageConfig{}

var createStageCmd = &cobra.Command{
	Use:   "create-stage",
	Short: "Create the Snowflake external STAGE pointing at the shared S3 location",
	Long: `Create the Snowflake external STAGE pointing at the shared S3 location the
export job writes to. Without --execute-ddl the statement is printed so it
can be reviewed or run by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		createStageCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunCreateStage(&createStageCfg)
	},
}

func init() {
	rootCmd.AddCommand(createStageCmd)
	createStageCmd.Flags().SortFlags = false
	createStageCmd.Flags().StringVar(&createStageCfg.StageName, "stage", "", "Snowflake stage name")
	createStageCmd.Flags().StringVar(&createStageCfg.S3Url, "s3-url", "", "S3 URL the export job writes to, e.g. s3://bucket/prefix")
	createStageCmd.Flags().StringVar(&createStageCfg.S3Key, "s3-key", "", "AWS access key (falls back to AWS_ACCESS_KEY_ID)")
	createStageCmd.Flags().StringVar(&createStageCfg.S3Secret, "s3-secret", "", "AWS secret key (falls back to AWS_SECRET_ACCESS_KEY)")
	createStageCmd.Flags().BoolVar(&createStageCfg.ExecuteDDL, "execute-ddl", false, "Execute the DDL instead of printing it")
	createStageCmd.Flags().StringVar(&createStageCfg.LogLevel, "log-level", "error", "Log level: trace, debug, info, warn, error")
	createStageCmd.Flags().StringVar(&createStageCfg.ConfigFile, "config", "", "Path to an optional YAML config file")
	_ = createStageCmd.MarkFlagRequired("stage")
	_ = createStageCmd.MarkFlagRequired("s3-url")
}
