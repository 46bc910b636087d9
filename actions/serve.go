package actions

import (
	"github.com/bricklake/bricksync/constants"
	"github.com/bricklake/bricksync/logger"
)

type ServeConfig struct {
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	ConfigFile       string
	StackDumpOnPanic bool
}

// RunServe wires the service and starts the HTTP API. Blocks until shutdown.
func RunServe(cfg *ServeConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	log := logger.NewWebLogger(constants.ServiceName, cfg.LogLevel, cfg.StackDumpOnPanic, nil)
	appCfg, err := loadConfig(cfg.ConfigFile)
	if err != nil {
		return err
	}
	dbx, err := newDatabricksClient(log, appCfg)
	if err != nil {
		return err
	}
	syncSvc, err := newSyncService(log, appCfg, dbx)
	if err != nil {
		return err
	}
	return RunWebServer(&WebServerConfig{
		Log:        log,
		Port:       appCfg.Port,
		Production: appCfg.IsProduction(),
		Databricks: dbx,
		Sync:       syncSvc,
	})
}
