package actions

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/bricklake/bricksync/constants"
	"github.com/bricklake/bricksync/logger"
	"github.com/bricklake/bricksync/orchestrator"
)

type RunSyncConfig struct {
	Sql              string `errorTxt:"SQL statement" mandatory:"yes"`
	SourceTable      string
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	ConfigFile       string
	StackDumpOnPanic bool
}

// RunSync starts one sync from the command line and follows it to a terminal
// status, printing run log lines as they appear.
func RunSync(cfg *RunSyncConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}
	log := logger.NewLogger(constants.ServiceName, cfg.LogLevel, cfg.StackDumpOnPanic)
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
	runId, err := syncSvc.Start(orchestrator.SyncRequest{Sql: cfg.Sql, SourceTable: cfg.SourceTable})
	if err != nil {
		return err
	}
	fmt.Println("Started sync run", runId)
	printed := 0
	for {
		run, ok := syncSvc.GetRun(runId)
		if !ok {
			return errors.Errorf("sync run %v disappeared", runId)
		}
		for ; printed < len(run.Logs); printed++ {
			fmt.Println(run.Logs[printed])
		}
		switch run.Status {
		case orchestrator.StatusCompleted:
			fmt.Println("Sync run", runId, "completed")
			return nil
		case orchestrator.StatusFailed:
			return errors.Errorf("sync run %v failed", runId)
		}
		time.Sleep(time.Second)
	}
}
