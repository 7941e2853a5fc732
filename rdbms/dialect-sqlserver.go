package rdbms

import (
	"fmt"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

// SqlServerDialect implements shared.Dialect for Microsoft SQL Server.
type SqlServerDialect struct{}

func (SqlServerDialect) Name() string {
	return constants.ConnectionTypeSqlServer
}

func (SqlServerDialect) Placeholder(n int) string {
	return fmt.Sprintf("@p%v", n)
}

func (SqlServerDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, "[", "]")
}

func (SqlServerDialect) ColumnType(k shared.ColumnKind) string {
	switch k {
	case shared.ColumnBool:
		return "BIT"
	case shared.ColumnInt:
		return "INT"
	default:
		return "NVARCHAR(255)"
	}
}

func (SqlServerDialect) CreateTableIfNotExists(tableAndColumns string, table string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%v', N'U') IS NULL CREATE TABLE %v", strings.ReplaceAll(table, "'", "''"), tableAndColumns)
}

// InsertIgnore uses INSERT ... SELECT ... WHERE NOT EXISTS since SQL Server has no ON CONFLICT clause.
// Bind variables are reused in the sub-query so the caller supplies values for cols only.
func (d SqlServerDialect) InsertIgnore(table string, cols []string, keyCols []string) string {
	tableCols, binds := insertColumns(d, table, cols)
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		pos[c] = i + 1
	}
	where := make([]string, 0, len(keyCols))
	for _, k := range keyCols {
		where = append(where, fmt.Sprintf("%v = %v", k, d.Placeholder(pos[k])))
	}
	return fmt.Sprintf("INSERT INTO %v SELECT %v WHERE NOT EXISTS (SELECT 1 FROM %v WHERE %v)",
		tableCols, binds, table, strings.Join(where, " AND "))
}

func (SqlServerDialect) Savepoint(name string) string {
	return "SAVE TRANSACTION " + name
}

func (SqlServerDialect) RollbackToSavepoint(name string) string {
	return "ROLLBACK TRANSACTION " + name
}

// ReleaseSavepoint returns "" as SQL Server savepoints live until the transaction ends.
func (SqlServerDialect) ReleaseSavepoint(name string) string {
	return ""
}

// TablesQuery lists user tables (U) and optionally views (V) from sys.objects in the given database.
func (d SqlServerDialect) TablesQuery(database string, schema string, includeViews bool) (string, []interface{}) {
	types := "'U'"
	if includeViews {
		types = "'U', 'V'"
	}
	db := d.QuoteIdentifier(database)
	return fmt.Sprintf(`SELECT o.name, o.type FROM %v.sys.objects o
JOIN %v.sys.schemas s ON s.schema_id = o.schema_id
WHERE o.type IN (%v) AND s.name = %v`, db, db, types, d.Placeholder(1)), []interface{}{schema}
}

func (SqlServerDialect) DatabasesQuery() string {
	return "SELECT name FROM sys.databases WHERE database_id > 4"
}

func (SqlServerDialect) DefaultSchema(database string) string {
	return constants.DefaultSqlServerSchema
}

func (SqlServerDialect) IsUniqueViolation(err error) bool {
	var e mssql.Error
	if errors.As(err, &e) {
		return e.Number == 2627 || e.Number == 2601
	}
	return false
}
