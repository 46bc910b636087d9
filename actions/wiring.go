package actions

import (
	"github.com/pkg/errors"

	s3 "github.com/bricklake/bricksync/aws/s3"
	"github.com/bricklake/bricksync/config"
	"github.com/bricklake/bricksync/databricks"
	"github.com/bricklake/bricksync/logger"
	"github.com/bricklake/bricksync/orchestrator"
	"github.com/bricklake/bricksync/snowflake"
)

// loadConfig reads the environment and overlays the optional config file.
func loadConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := config.MergeFile(cfg, configFile, true); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newDatabricksClient(log logger.Logger, cfg *config.Config) (*databricks.Client, error) {
	return databricks.NewClient(log, databricks.ClientConfig{
		Host:     cfg.Databricks.Host,
		Token:    cfg.Databricks.Token,
		HttpPath: cfg.Databricks.HttpPath,
	})
}

// newSyncService wires the full export/import pipeline: the Databricks
// client, the Snowflake loader with its S3 lister, the in-memory run store.
func newSyncService(log logger.Logger, cfg *config.Config, dbx *databricks.Client) (*orchestrator.SyncService, error) {
	executor, err := snowflake.NewExecutor(log, snowflake.ConnectionDetailsFromConfig(cfg.Snowflake))
	if err != nil {
		return nil, errors.Wrap(err, "unable to build Snowflake session")
	}
	// The base path roots both the export destination and the stage-relative
	// partition paths of the loader, so a malformed value fails startup.
	bucket, err := s3.ParseDSN(cfg.Export.BasePath, cfg.Export.S3Region)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse export base path")
	}
	loader, err := snowflake.NewLoader(&snowflake.LoaderConfig{
		Log:             log,
		Db:              executor,
		Database:        cfg.Snowflake.Database,
		StageName:       cfg.Snowflake.Stage,
		StagePathPrefix: bucket.Prefix,
		S3:              s3.NewClient(bucket.Name, bucket.Region, ""),
	})
	if err != nil {
		return nil, err
	}
	return orchestrator.NewSyncService(orchestrator.SyncConfig{
		Log:            log,
		Store:          orchestrator.NewMemoryStore(),
		Queries:        dbx,
		Jobs:           dbx,
		Loader:         loader,
		ExportBasePath: cfg.Export.BasePath,
		ExportJobName:  cfg.Export.JobName,
		PollInterval:   cfg.Sync.PollInterval,
		PollTimeout:    cfg.Sync.PollTimeout,
	})
}
