package shared

import (
	"context"
)

// Connector abstracts all access to Go SQL functionality.
type Connector interface {
	// Go SQL entry points:
	Begin() (Transacter, error)
	BeginTx(ctx context.Context) (Transacter, error)
	Exec(query string, args ...interface{}) (Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(query string, args ...interface{}) (*HpRows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error)
	Close()
	// Engine specifics:
	GetType() string
	GetDialect() Dialect
}

type Transacter interface {
	Exec(query string, args ...interface{}) (Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error)
	Commit() error
	Rollback() error
}

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Dialect holds the SQL text that differs between database engines.
// Implementations never embed caller-supplied values in SQL text: values are bound using Placeholder(),
// while identifiers come from configuration or are validated and quoted by the caller.
type Dialect interface {
	// Name returns the connection type the dialect applies to.
	Name() string
	// Placeholder returns the bind variable for the n-th (1-based) argument of a statement.
	Placeholder(n int) string
	// QuoteIdentifier quotes a single identifier e.g. a database name.
	QuoteIdentifier(s string) string
	// ColumnType returns the DDL type used for the given kind of column.
	ColumnType(k ColumnKind) string
	// CreateTableIfNotExists wraps a CREATE TABLE statement body, "<table> (<cols>)", so it is a no-op when the table exists.
	CreateTableIfNotExists(tableAndColumns string, table string) string
	// InsertIgnore returns an INSERT of cols into table that silently does nothing when a row with the same keyCols
	// exists already. Values are bound in the order of cols.
	InsertIgnore(table string, cols []string, keyCols []string) string
	// Savepoint, RollbackToSavepoint and ReleaseSavepoint return the statements used to isolate part of a
	// transaction. ReleaseSavepoint may return "" if the engine has no such statement.
	Savepoint(name string) string
	RollbackToSavepoint(name string) string
	ReleaseSavepoint(name string) string
	// TablesQuery returns SQL and args that list table names and types (normalised by the caller) in the given
	// database and schema. Views are included when includeViews is true.
	TablesQuery(database string, schema string, includeViews bool) (string, []interface{})
	// DatabasesQuery returns SQL listing the databases or schemas visible to the connection.
	DatabasesQuery() string
	// DefaultSchema is the schema searched by TablesQuery when the caller supplies none.
	// The database name is supplied because some engines treat schemas and databases as one.
	DefaultSchema(database string) string
	// IsUniqueViolation returns true if err was caused by a primary key or unique constraint.
	IsUniqueViolation(err error) bool
}

type ColumnKind int

const (
	ColumnString ColumnKind = iota + 1
	ColumnBool
	ColumnInt
)

type SqlResultHandler interface {
	HandleHeader(i []interface{}) error
	HandleRow(i []interface{}) error
}
