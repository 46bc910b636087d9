package actions

import (
	"fmt"
	"os"

	"github.com/bricklake/bricksync/constants"
	"github.com/bricklake/bricksync/helper"
	"github.com/bricklake/bricksync/logger"
	"github.com/bricklake/bricksync/snowflake"
)

type CreateStageConfig struct {
	StageName        string `errorTxt:"Snowflake stage" mandatory:"yes"`
	S3Url            string `errorTxt:"AWS S3 URL" mandatory:"yes"`
	S3Key            string `errorTxt:"AWS S3 access key" mandatory:"yes"`
	S3Secret         string `errorTxt:"AWS S3 secret key" mandatory:"yes"`
	ExecuteDDL       bool
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	ConfigFile       string
	StackDumpOnPanic bool
}

// RunCreateStage prints the CREATE STAGE DDL the export bucket needs, or
// executes it against the configured Snowflake account with --execute-ddl.
func RunCreateStage(cfg *CreateStageConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}
	log := logger.NewLogger(constants.ServiceName, cfg.LogLevel, cfg.StackDumpOnPanic)
	// Get AWS variables from env.
	if value := os.Getenv("AWS_ACCESS_KEY_ID"); cfg.S3Key == "" && value != "" { // if the CLI didn't supply a key and there is one we can get from the env...
		cfg.S3Key = value
	}
	if value := os.Getenv("AWS_SECRET_ACCESS_KEY"); cfg.S3Secret == "" && value != "" { // if the CLI didn't supply a secret and there is one we can get from the env...
		cfg.S3Secret = value
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	ddl := snowflake.GetStageDDL(cfg.StageName, cfg.S3Url, cfg.S3Key, cfg.S3Secret, !cfg.ExecuteDDL)
	if !cfg.ExecuteDDL { // if this is a dry run...
		for _, stmt := range ddl {
			fmt.Println(stmt)
		}
		return nil
	}
	appCfg, err := loadConfig(cfg.ConfigFile)
	if err != nil {
		return err
	}
	db, err := snowflake.NewExecutor(log, snowflake.ConnectionDetailsFromConfig(appCfg.Snowflake))
	if err != nil {
		return err
	}
	for _, stmt := range ddl {
		log.Info(stmt)
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
