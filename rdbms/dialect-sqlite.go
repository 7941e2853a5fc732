package rdbms

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SqliteDialect implements shared.Dialect for SQLite files.
// SQLite has one database per connection so database and schema arguments are ignored.
type SqliteDialect struct {
	ansiSavepoints
}

func (SqliteDialect) Name() string {
	return constants.ConnectionTypeSqlite
}

func (SqliteDialect) Placeholder(n int) string {
	return "?"
}

func (SqliteDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, `"`, `"`)
}

func (SqliteDialect) ColumnType(k shared.ColumnKind) string {
	switch k {
	case shared.ColumnBool:
		return "BOOLEAN"
	case shared.ColumnInt:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func (SqliteDialect) CreateTableIfNotExists(tableAndColumns string, table string) string {
	return "CREATE TABLE IF NOT EXISTS " + tableAndColumns
}

func (d SqliteDialect) InsertIgnore(table string, cols []string, keyCols []string) string {
	tableCols, binds := insertColumns(d, table, cols)
	return fmt.Sprintf("INSERT INTO %v VALUES (%v) ON CONFLICT DO NOTHING", tableCols, binds)
}

func (SqliteDialect) TablesQuery(database string, schema string, includeViews bool) (string, []interface{}) {
	types := "'table'"
	if includeViews {
		types = "'table', 'view'"
	}
	return fmt.Sprintf(`SELECT name, type FROM sqlite_master WHERE type IN (%v) AND name NOT LIKE 'sqlite\_%%' ESCAPE '\'`, types), nil
}

func (SqliteDialect) DatabasesQuery() string {
	return "SELECT name FROM pragma_database_list"
}

func (SqliteDialect) DefaultSchema(database string) string {
	return "main"
}

func (SqliteDialect) IsUniqueViolation(err error) bool {
	var e *sqlite.Error
	if errors.As(err, &e) {
		switch e.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
