package actions

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/bricklake/bricksync/constants"
	"github.com/bricklake/bricksync/logger"
)

type QueryConfig struct {
	Query            string `errorTxt:"SQL statement" mandatory:"yes"`
	PrintHeader      bool
	DryRun           bool
	LogLevel         string
	ConfigFile       string
	StackDumpOnPanic bool
}

// RunQuery executes a statement on the configured SQL warehouse and writes
// the result to STDOUT as CSV lines.
func RunQuery(cfg *QueryConfig) error {
	if cfg.DryRun {
		fmt.Println(cfg.Query)
		return nil
	}
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
	result, err := dbx.ExecuteStatement(cfg.Query)
	if err != nil {
		return err
	}
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if cfg.PrintHeader {
		header := make([]string, len(result.Columns))
		for i, c := range result.Columns {
			header[i] = c.Name
		}
		if err := w.Write(header); err != nil {
			return fmt.Errorf("error outputting SQL header: %v", err)
		}
	}
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell == nil {
				cells[i] = ""
			} else {
				cells[i] = fmt.Sprint(cell)
			}
		}
		if err := w.Write(cells); err != nil {
			return fmt.Errorf("error outputting SQL row: %v", err)
		}
	}
	return nil
}
