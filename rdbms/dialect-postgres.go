package rdbms

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

const pgUniqueViolation = "23505"

// PostgresDialect implements shared.Dialect for PostgreSQL.
type PostgresDialect struct {
	ansiSavepoints
}

func (PostgresDialect) Name() string {
	return constants.ConnectionTypePostgres
}

func (PostgresDialect) Placeholder(n int) string {
	return fmt.Sprintf("$%v", n)
}

func (PostgresDialect) QuoteIdentifier(s string) string {
	return pq.QuoteIdentifier(s)
}

func (PostgresDialect) ColumnType(k shared.ColumnKind) string {
	switch k {
	case shared.ColumnBool:
		return "BOOLEAN"
	case shared.ColumnInt:
		return "INTEGER"
	default:
		return "VARCHAR(255)"
	}
}

func (PostgresDialect) CreateTableIfNotExists(tableAndColumns string, table string) string {
	return "CREATE TABLE IF NOT EXISTS " + tableAndColumns
}

func (d PostgresDialect) InsertIgnore(table string, cols []string, keyCols []string) string {
	tableCols, binds := insertColumns(d, table, cols)
	return fmt.Sprintf("INSERT INTO %v VALUES (%v) ON CONFLICT DO NOTHING", tableCols, binds)
}

// TablesQuery uses information_schema which only shows the database of the current connection,
// so the database is matched as a value rather than used to qualify the catalog.
func (d PostgresDialect) TablesQuery(database string, schema string, includeViews bool) (string, []interface{}) {
	types := "'BASE TABLE'"
	if includeViews {
		types = "'BASE TABLE', 'VIEW'"
	}
	return fmt.Sprintf(`SELECT table_name, table_type FROM information_schema.tables
WHERE table_catalog = %v AND table_schema = %v AND table_type IN (%v)`,
		d.Placeholder(1), d.Placeholder(2), types), []interface{}{database, schema}
}

func (PostgresDialect) DatabasesQuery() string {
	return "SELECT datname FROM pg_database WHERE NOT datistemplate"
}

func (PostgresDialect) DefaultSchema(database string) string {
	return constants.DefaultPostgresSchema
}

func (PostgresDialect) IsUniqueViolation(err error) bool {
	var e *pq.Error
	if errors.As(err, &e) {
		return e.Code == pgUniqueViolation
	}
	return false
}
