package constants

import "time"

const (
	ServiceName = "bricksync"

	// Environment variable names. These match the names the deployment
	// tooling already exports, so no prefix is applied.
	EnvVarDatabricksHost     = "DATABRICKS_HOST"
	EnvVarDatabricksToken    = "DATABRICKS_TOKEN"
	EnvVarDatabricksHttpPath = "DATABRICKS_HTTP_PATH"
	EnvVarPort               = "PORT"
	EnvVarLogLevel           = "LOG_LEVEL"
	EnvVarAppEnv             = "APP_ENV"
	EnvVarSnowflakeAccount   = "SNOWFLAKE_ACCOUNT"
	EnvVarSnowflakeUsername  = "SNOWFLAKE_USERNAME"
	EnvVarSnowflakePassword  = "SNOWFLAKE_PASSWORD"
	EnvVarSnowflakeWarehouse = "SNOWFLAKE_WAREHOUSE"
	EnvVarSnowflakeDatabase  = "SNOWFLAKE_DATABASE"
	EnvVarSnowflakeSchema    = "SNOWFLAKE_SCHEMA"
	EnvVarSnowflakeRole      = "SNOWFLAKE_ROLE"
	EnvVarSnowflakeStage     = "SNOWFLAKE_STAGE"
	EnvVarExportBasePath     = "EXPORT_BASE_PATH"
	EnvVarExportJobName      = "EXPORT_JOB_NAME"
	EnvVarExportS3Region     = "EXPORT_S3_REGION"
	EnvVarSyncPollInterval   = "SYNC_POLL_INTERVAL"
	EnvVarSyncPollTimeout    = "SYNC_POLL_TIMEOUT"

	AppEnvProduction = "production"

	DefaultPort           = 4000
	DefaultLogLevel       = "info"
	DefaultSnowflakeStage = "S3_SHARE_STAGE"
	DefaultExportBasePath = "s3://databricks-snowflake-share/runs"
	DefaultExportJobName  = "bricksync-export"
	DefaultExportS3Region = "eu-west-1"

	// The export job takes tens of seconds to minutes; poll slowly and cap
	// the overall wait so stuck runs reach a terminal state.
	DefaultSyncPollInterval = 30 * time.Second
	DefaultSyncPollTimeout  = 20 * time.Minute

	// Fallback identifier used when sanitising a run id leaves nothing.
	SanitisedIdentifierFallback = "run"

	// Name of the table created per run in the destination schema.
	LoadTableName = "shared_rows"

	// Column used to tag loaded rows with the run that produced them.
	RunIdColumnName = "_sync_run_id"
)
