package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/bricklake/bricksync/constants"
	"github.com/bricklake/bricksync/helper"
	"github.com/pkg/errors"
)

// Databricks holds the control-plane and SQL warehouse connection settings.
type Databricks struct {
	Host     string `mapstructure:"host" errorTxt:"Databricks host" mandatory:"yes"`
	Token    string `mapstructure:"token" errorTxt:"Databricks access token" mandatory:"yes"`
	HttpPath string `mapstructure:"httpPath" errorTxt:"Databricks warehouse HTTP path" mandatory:"yes"`
}

// Snowflake holds the destination store connection settings.
type Snowflake struct {
	Account   string `mapstructure:"account" errorTxt:"Snowflake account" mandatory:"yes"`
	User      string `mapstructure:"user" errorTxt:"Snowflake username" mandatory:"yes"`
	Password  string `mapstructure:"password" errorTxt:"Snowflake password" mandatory:"yes"`
	Database  string `mapstructure:"database" errorTxt:"Snowflake database" mandatory:"yes"`
	Warehouse string `mapstructure:"warehouse" errorTxt:"Snowflake warehouse"`
	Schema    string `mapstructure:"schema" errorTxt:"Snowflake schema"`
	Role      string `mapstructure:"role" errorTxt:"Snowflake role"`
	Stage     string `mapstructure:"stage" errorTxt:"Snowflake stage"`
}

// Export holds settings for the Databricks-to-S3 export leg.
type Export struct {
	BasePath string `mapstructure:"basePath" errorTxt:"export base path" mandatory:"yes"`
	JobName  string `mapstructure:"jobName" errorTxt:"export job name" mandatory:"yes"`
	S3Region string `mapstructure:"s3Region" errorTxt:"export S3 region"`
}

// Sync holds the orchestrator polling settings.
type Sync struct {
	PollInterval time.Duration `mapstructure:"pollInterval"`
	PollTimeout  time.Duration `mapstructure:"pollTimeout"`
}

// Config is the full service configuration.
type Config struct {
	Databricks Databricks `mapstructure:"databricks"`
	Snowflake  Snowflake  `mapstructure:"snowflake"`
	Export     Export     `mapstructure:"export"`
	Sync       Sync       `mapstructure:"sync"`
	Port       int        `mapstructure:"port" errorTxt:"listen port" mandatory:"yes"`
	LogLevel   string     `mapstructure:"logLevel" errorTxt:"log level" mandatory:"yes"`
	AppEnv     string     `mapstructure:"appEnv"`
}

// IsProduction reports whether error details should be suppressed in API responses.
func (c *Config) IsProduction() bool {
	return c.AppEnv == constants.AppEnvProduction
}

// Load reads the service configuration from the environment.
// Missing mandatory values produce a single error naming every gap so a bad
// deployment fails at startup rather than on first use.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     constants.DefaultPort,
		LogLevel: helper.ReadValueFromEnvWithDefault(constants.EnvVarLogLevel, constants.DefaultLogLevel),
		AppEnv:   helper.ReadValueFromEnvWithDefault(constants.EnvVarAppEnv, ""),
	}
	_ = helper.ReadValueFromEnv(constants.EnvVarDatabricksHost, &cfg.Databricks.Host)
	_ = helper.ReadValueFromEnv(constants.EnvVarDatabricksToken, &cfg.Databricks.Token)
	_ = helper.ReadValueFromEnv(constants.EnvVarDatabricksHttpPath, &cfg.Databricks.HttpPath)
	_ = helper.ReadValueFromEnv(constants.EnvVarSnowflakeAccount, &cfg.Snowflake.Account)
	_ = helper.ReadValueFromEnv(constants.EnvVarSnowflakeUsername, &cfg.Snowflake.User)
	_ = helper.ReadValueFromEnv(constants.EnvVarSnowflakePassword, &cfg.Snowflake.Password)
	_ = helper.ReadValueFromEnv(constants.EnvVarSnowflakeWarehouse, &cfg.Snowflake.Warehouse)
	_ = helper.ReadValueFromEnv(constants.EnvVarSnowflakeDatabase, &cfg.Snowflake.Database)
	_ = helper.ReadValueFromEnv(constants.EnvVarSnowflakeSchema, &cfg.Snowflake.Schema)
	_ = helper.ReadValueFromEnv(constants.EnvVarSnowflakeRole, &cfg.Snowflake.Role)
	cfg.Snowflake.Stage = strings.TrimPrefix(
		helper.ReadValueFromEnvWithDefault(constants.EnvVarSnowflakeStage, constants.DefaultSnowflakeStage), "@")
	cfg.Export.BasePath = helper.ReadValueFromEnvWithDefault(constants.EnvVarExportBasePath, constants.DefaultExportBasePath)
	cfg.Export.JobName = helper.ReadValueFromEnvWithDefault(constants.EnvVarExportJobName, constants.DefaultExportJobName)
	cfg.Export.S3Region = helper.ReadValueFromEnvWithDefault(constants.EnvVarExportS3Region, constants.DefaultExportS3Region)
	cfg.Sync.PollInterval = helper.ReadDurationFromEnvWithDefault(constants.EnvVarSyncPollInterval, constants.DefaultSyncPollInterval)
	cfg.Sync.PollTimeout = helper.ReadDurationFromEnvWithDefault(constants.EnvVarSyncPollTimeout, constants.DefaultSyncPollTimeout)
	if v, err := helper.GetEnvVar(constants.EnvVarPort, false); err == nil && v != "" { // if a port was supplied in the environment...
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 {
			return nil, errors.Errorf("invalid %v value %q", constants.EnvVarPort, v)
		}
		cfg.Port = p
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
