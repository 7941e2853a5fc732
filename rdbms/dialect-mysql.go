package rdbms

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

const mysqlDuplicateEntry = 1062

// MySqlDialect implements shared.Dialect for MySQL and MariaDB.
type MySqlDialect struct {
	ansiSavepoints
}

func (MySqlDialect) Name() string {
	return constants.ConnectionTypeMySql
}

func (MySqlDialect) Placeholder(n int) string {
	return "?"
}

func (MySqlDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, "`", "`")
}

func (MySqlDialect) ColumnType(k shared.ColumnKind) string {
	switch k {
	case shared.ColumnBool:
		return "BOOLEAN"
	case shared.ColumnInt:
		return "INT"
	default:
		return "VARCHAR(255)"
	}
}

func (MySqlDialect) CreateTableIfNotExists(tableAndColumns string, table string) string {
	return "CREATE TABLE IF NOT EXISTS " + tableAndColumns
}

func (d MySqlDialect) InsertIgnore(table string, cols []string, keyCols []string) string {
	tableCols, binds := insertColumns(d, table, cols)
	return fmt.Sprintf("INSERT IGNORE INTO %v VALUES (%v)", tableCols, binds)
}

// TablesQuery treats the schema as the MySQL database.
func (d MySqlDialect) TablesQuery(database string, schema string, includeViews bool) (string, []interface{}) {
	types := "'BASE TABLE'"
	if includeViews {
		types = "'BASE TABLE', 'VIEW'"
	}
	return fmt.Sprintf(`SELECT table_name, table_type FROM information_schema.tables
WHERE table_schema = ? AND table_type IN (%v)`, types), []interface{}{schema}
}

func (MySqlDialect) DatabasesQuery() string {
	return "SELECT schema_name FROM information_schema.schemata"
}

func (MySqlDialect) DefaultSchema(database string) string {
	return database
}

func (MySqlDialect) IsUniqueViolation(err error) bool {
	var e *mysql.MySQLError
	if errors.As(err, &e) {
		return e.Number == mysqlDuplicateEntry
	}
	return false
}
