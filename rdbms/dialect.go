package rdbms

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

var dialects = map[string]shared.Dialect{
	constants.ConnectionTypeSqlServer: SqlServerDialect{},
	constants.ConnectionTypePostgres:  PostgresDialect{},
	constants.ConnectionTypeMySql:     MySqlDialect{},
	constants.ConnectionTypeSqlite:    SqliteDialect{},
}

// GetDialect returns the Dialect for the given connection type.
func GetDialect(connectionType string) (shared.Dialect, error) {
	d, ok := dialects[strings.ToLower(connectionType)]
	if !ok {
		return nil, errors.Errorf("unsupported database type, %q", connectionType)
	}
	return d, nil
}

// ansiSavepoints supplies the SAVEPOINT statements shared by Postgres, MySQL and SQLite.
type ansiSavepoints struct{}

func (ansiSavepoints) Savepoint(name string) string {
	return "SAVEPOINT " + name
}

func (ansiSavepoints) RollbackToSavepoint(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}

func (ansiSavepoints) ReleaseSavepoint(name string) string {
	return "RELEASE SAVEPOINT " + name
}

// insertColumns returns "table (c1, c2)" and the placeholders for cols.
func insertColumns(d shared.Dialect, table string, cols []string) (string, string) {
	return fmt.Sprintf("%v (%v)", table, strings.Join(cols, ", ")), shared.Placeholders(d, 1, len(cols))
}

func quoteWith(s string, open string, close string) string {
	return open + strings.ReplaceAll(s, close, close+close) + close
}

// NormaliseTableType maps engine specific object types to "table" or "view".
func NormaliseTableType(t string) string {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "U", "BASE TABLE", "TABLE":
		return "table"
	case "V", "VIEW", "SYSTEM VIEW":
		return "view"
	default:
		return strings.ToLower(strings.TrimSpace(t))
	}
}
