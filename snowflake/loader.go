package snowflake

import (
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"

	s3 "github.com/bricklake/bricksync/aws/s3"
	"github.com/bricklake/bricksync/constants"
	"github.com/bricklake/bricksync/databricks"
	"github.com/bricklake/bricksync/logger"
)

// LoaderConfig wires the loader to its Snowflake session and, optionally, to
// the S3 bucket the export job writes into.
type LoaderConfig struct {
	Log             logger.Logger
	Db              Executor
	Database        string `errorTxt:"Snowflake database" mandatory:"yes"`
	StageName       string `errorTxt:"Snowflake stage" mandatory:"yes"`
	StagePathPrefix string    // stage-relative prefix the export job writes run partitions under.
	S3              s3.Lister // optional; enables the staged file count
}

// LoadResult summarises one completed load.
// StageFilesCount is -1 when the staged parquet files could not be counted.
type LoadResult struct {
	RowsLoaded      int64
	StageFilesCount int64
}

// Loader moves one exported run from the shared stage into Snowflake.
type Loader struct {
	cfg *LoaderConfig
}

// NewLoader validates the config and returns a Loader.
func NewLoader(cfg *LoaderConfig) (*Loader, error) {
	if cfg.Log == nil || cfg.Db == nil {
		return nil, errors.New("loader requires a logger and a Snowflake executor")
	}
	if cfg.Database == "" || cfg.StageName == "" {
		return nil, errors.New("loader requires a Snowflake database and stage name")
	}
	return &Loader{cfg: cfg}, nil
}

// SchemaForRun returns the per-run schema name data is loaded into.
func SchemaForRun(runId string) string {
	return "run_" + SanitizeIdentifier(runId)
}

// runPartitionPath is the stage-relative path the export job writes run data
// to. The configured base-path prefix roots it so the COPY INTO path and the
// staged file listing always agree with the export destination.
func (l *Loader) runPartitionPath(runId string) string {
	partition := fmt.Sprintf("run_id=%v/", runId)
	if prefix := strings.Trim(l.cfg.StagePathPrefix, "/"); prefix != "" {
		return prefix + "/" + partition
	}
	return partition
}

// LoadExportedRun loads the staged parquet files for one run into
// <database>.run_<id>.shared_rows. The load is idempotent: rows carrying the
// same run id are deleted before COPY INTO so a re-run replaces rather than
// duplicates.
func (l *Loader) LoadExportedRun(runId string, columns []databricks.Column) (*LoadResult, error) {
	log := l.cfg.Log
	if runId == "" {
		return nil, errors.New("run id is required")
	}
	if len(columns) == 0 {
		return nil, errors.New("at least one column is required to build the load table")
	}
	table := l.qualifiedTableName(runId)
	fields := make([]string, len(columns))
	for i, c := range columns {
		fields[i] = c.Name
	}
	colMap := SanitizeColumns(fields)
	statements := []string{
		fmt.Sprintf("create schema if not exists %v.%v", l.cfg.Database, SchemaForRun(runId)),
		l.createTableSql(table, colMap, columns),
		fmt.Sprintf("delete from %v where %v = '%v'", table, constants.RunIdColumnName, escapeSingleQuotes(runId)),
		l.copyIntoSql(table, colMap, runId),
	}
	var rowsLoaded int64
	for _, stmt := range statements { // for each SQL that we should execute...
		log.Debug("executing query: ", stmt)
		n, err := l.cfg.Db.Exec(stmt)
		if err != nil {
			return nil, err
		}
		rowsLoaded = n // COPY INTO runs last so its count survives the loop.
	}
	result := &LoadResult{RowsLoaded: rowsLoaded, StageFilesCount: l.countStagedFiles(runId)}
	l.verifyRowCount(table, runId, rowsLoaded)
	return result, nil
}

func (l *Loader) qualifiedTableName(runId string) string {
	return fmt.Sprintf("%v.%v.%v", l.cfg.Database, SchemaForRun(runId), constants.LoadTableName)
}

// createTableSql builds the CREATE TABLE IF NOT EXISTS statement with mapped
// column types plus the run id tracking column.
func (l *Loader) createTableSql(table string, colMap *om.OrderedMap, columns []databricks.Column) string {
	typesByField := make(map[string]string, len(columns))
	for _, c := range columns {
		typesByField[c.Name] = MapDataType(c.Type)
	}
	defs := make([]string, 0, colMap.Len()+1)
	iter := colMap.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		name := kv.Key.(string)
		field := kv.Value.(string)
		defs = append(defs, fmt.Sprintf("%v %v", name, typesByField[field]))
	}
	defs = append(defs, fmt.Sprintf("%v VARCHAR", constants.RunIdColumnName))
	return fmt.Sprintf("create table if not exists %v ( %v )", table, strings.Join(defs, ", "))
}

// copyIntoSql builds the COPY INTO statement reading the run's parquet
// partition off the shared stage.
func (l *Loader) copyIntoSql(table string, colMap *om.OrderedMap, runId string) string {
	targets := make([]string, 0, colMap.Len()+1)
	selects := make([]string, 0, colMap.Len()+1)
	iter := colMap.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		targets = append(targets, kv.Key.(string))
		selects = append(selects, fmt.Sprintf(`$1:"%v"`, strings.Replace(kv.Value.(string), `"`, `""`, -1)))
	}
	targets = append(targets, constants.RunIdColumnName)
	selects = append(selects, fmt.Sprintf("'%v'", escapeSingleQuotes(runId)))
	return fmt.Sprintf("copy into %v ( %v ) from ( select %v from '@%v/%v' ) file_format = ( type = parquet ) on_error = 'abort_statement'",
		table,
		strings.Join(targets, ", "),
		strings.Join(selects, ", "),
		l.cfg.StageName,
		l.runPartitionPath(runId),
	)
}

// countStagedFiles lists the run's partition on S3. The count is informative
// only so any failure degrades to -1 rather than failing the load.
func (l *Loader) countStagedFiles(runId string) int64 {
	if l.cfg.S3 == nil {
		return -1
	}
	keys, err := l.cfg.S3.List(l.runPartitionPath(runId))
	if err != nil {
		l.cfg.Log.Warn("unable to count staged files for run ", runId, ": ", err)
		return -1
	}
	return int64(len(keys))
}

// verifyRowCount compares the loaded row count against the table. A mismatch
// is logged and never fails the load.
func (l *Loader) verifyRowCount(table string, runId string, rowsLoaded int64) {
	stmt := fmt.Sprintf("select count(*) from %v where %v = '%v'", table, constants.RunIdColumnName, escapeSingleQuotes(runId))
	n, err := l.cfg.Db.QueryCount(stmt)
	if err != nil {
		l.cfg.Log.Warn("unable to verify row count for run ", runId, ": ", err)
		return
	}
	if n != rowsLoaded { // if the table disagrees with COPY INTO...
		l.cfg.Log.Warn("row count mismatch for run ", runId, ": copied ", rowsLoaded, " but table holds ", n)
	}
}

func escapeSingleQuotes(s string) string {
	return strings.Replace(s, "'", "''", -1)
}
