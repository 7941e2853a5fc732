package rdbms

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/rdbms/shared"
	"github.com/xo/dburl"
	_ "modernc.org/sqlite"
)

const pingTimeout = 15 * time.Second

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	t := strings.ToLower(c.Type)
	switch t {
	case constants.ConnectionTypeSqlServer, constants.ConnectionTypePostgres:
		db, err = newConnectionWithDsn(log, t, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeMySql:
		db, err = newMySqlConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeSqlite:
		db, err = newSqliteConnection(log, shared.GetDsnConnectionDetails(&c))
	default: // else we have an unsupported database...
		err = errors.Errorf("unsupported database type, %q", c.Type)
	}
	return
}

func newConnectionWithDsn(log logger.Logger, connectionType string, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	u, err := dburl.Parse(d.Dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, errors.Wrapf(err, "error parsing DSN %q", d)
	}
	return openAndPing(log, connectionType, u.Driver, u.DSN, d)
}

// newMySqlConnection opens a MySQL database.
// Timestamps are parsed into time.Time so that scans behave the same as the other engines.
func newMySqlConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	u, err := dburl.Parse(d.Dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing DSN %q", d)
	}
	cfg, err := mysql.ParseDSN(u.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing MySQL DSN %q", d)
	}
	cfg.ParseTime = true
	return openAndPing(log, constants.ConnectionTypeMySql, "mysql", cfg.FormatDSN(), d)
}

// newSqliteConnection opens a SQLite file using the modernc driver.
// The DSN is "sqlite:<path>[?<pragmas>]" or "file:<path>".
func newSqliteConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	dsn := d.Dsn
	for _, prefix := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
		if strings.HasPrefix(dsn, prefix) {
			dsn = strings.TrimPrefix(dsn, prefix)
			break
		}
	}
	if dsn == "" {
		return nil, errors.New("SQLite DSN is missing a file name")
	}
	return openAndPing(log, constants.ConnectionTypeSqlite, "sqlite", dsn, d)
}

func openAndPing(log logger.Logger, connectionType string, driver string, dsn string, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	dialect, err := GetDialect(connectionType)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %v connection", connectionType)
	}
	// Test the connection.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "error connecting to %v", d)
	}
	log.Info("Successful connection to: ", d)
	return shared.NewConnection(db, dialect), nil
}
