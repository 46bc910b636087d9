package snowflake

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/bricklake/bricksync/config"
	"github.com/bricklake/bricksync/helper"
	"github.com/bricklake/bricksync/logger"
	"github.com/pkg/errors"
	sf "github.com/snowflakedb/gosnowflake"
)

// ConnectionDetails holds everything needed to build a Snowflake DSN.
type ConnectionDetails struct {
	Account   string `errorTxt:"Snowflake account" mandatory:"yes"`
	User      string `errorTxt:"Snowflake username" mandatory:"yes"`
	Password  string `errorTxt:"Snowflake password" mandatory:"yes"`
	Database  string `errorTxt:"Snowflake database" mandatory:"yes"`
	Warehouse string `errorTxt:"Snowflake warehouse"`
	Schema    string `errorTxt:"Snowflake schema"`
	Role      string `errorTxt:"Snowflake role"`
}

func (d ConnectionDetails) String() string {
	return fmt.Sprintf("%v:%v@%v/%v?schema=%v&warehouse=%v&role=%v",
		d.User,
		"xxxxxxx",
		d.Account,
		d.Database,
		d.Schema,
		d.Warehouse,
		d.Role,
	)
}

// ConnectionDetailsFromConfig maps the service config onto connection details.
func ConnectionDetailsFromConfig(cfg config.Snowflake) ConnectionDetails {
	return ConnectionDetails{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Warehouse: cfg.Warehouse,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	}
}

// GetDSN constructs a DSN based on ConnectionDetails.
// The prefix 'snowflake://' is added to the DSN.
func GetDSN(d ConnectionDetails) (string, error) {
	if err := helper.ValidateStructIsPopulated(&d); err != nil {
		return "", err
	}
	cfg := &sf.Config{
		Account:   d.Account,
		User:      d.User,
		Password:  d.Password,
		Database:  d.Database,
		Schema:    d.Schema,
		Warehouse: d.Warehouse,
		Role:      d.Role,
	}
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", err
	}
	re := regexp.MustCompile("^snowflake://")
	if !re.MatchString(dsn) { // if the prefix is missing...
		dsn = fmt.Sprintf("snowflake://%v", dsn)
	}
	return dsn, nil
}

// Executor runs statements against Snowflake.
// The database/sql implementation opens a fresh connection per statement and
// closes it again so a long-idle service never holds a stale session.
type Executor interface {
	Exec(sql string) (rowsAffected int64, err error)
	QueryCount(sql string) (int64, error)
}

type dbExecutor struct {
	log logger.Logger
	dsn string
}

// NewExecutor builds an Executor from connection details.
func NewExecutor(log logger.Logger, d ConnectionDetails) (Executor, error) {
	dsn, err := GetDSN(d)
	if err != nil {
		return nil, err
	}
	return &dbExecutor{log: log, dsn: dsn}, nil
}

func (e *dbExecutor) open() (*sql.DB, error) {
	db, err := sql.Open("snowflake", strings.TrimPrefix(e.dsn, "snowflake://"))
	if err != nil {
		return nil, errors.Wrap(err, "unable to open Snowflake connection")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "unable to ping Snowflake")
	}
	return db, nil
}

// Exec opens a connection, executes one statement and closes the connection.
func (e *dbExecutor) Exec(stmt string) (int64, error) {
	db, err := e.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()
	e.log.Debug("executing Snowflake statement: ", stmt)
	res, err := db.Exec(stmt)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to execute statement %q", stmt)
	}
	n, err := res.RowsAffected()
	if err != nil { // some DDL does not report affected rows...
		return 0, nil
	}
	return n, nil
}

// QueryCount runs a statement expected to return a single numeric cell.
func (e *dbExecutor) QueryCount(stmt string) (int64, error) {
	db, err := e.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()
	e.log.Debug("executing Snowflake count query: ", stmt)
	var n int64
	if err := db.QueryRow(stmt).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "failed to run count query %q", stmt)
	}
	return n, nil
}
