package tracking

import (
	"context"
	"fmt"
	"strings"

	"github.com/relloyd/ctadmin/rdbms"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

type columnDef struct {
	name     string
	kind     shared.ColumnKind
	nullable bool
}

var projectColumnDefs = []columnDef{
	{colProjectID, shared.ColumnString, false},
	{"source_connection_id", shared.ColumnString, false},
	{"one_c_database", shared.ColumnString, false},
	{"biview_database", shared.ColumnString, true},
	{"biview_project_type", shared.ColumnInt, false},
	{"ct_database", shared.ColumnString, false},
	{"transfer_source_data", shared.ColumnBool, false},
	{"target_connection_id", shared.ColumnString, false},
	{"target_schema", shared.ColumnString, false},
	{"target_type", shared.ColumnString, false},
	{"update_dags_schedule", shared.ColumnString, true},
	{"update_dags_start", shared.ColumnString, true},
	{"transfer_dags_schedule", shared.ColumnString, true},
	{"transfer_dags_start", shared.ColumnString, true},
}

var trackedTableColumnDefs = []columnDef{
	{colProjectID, shared.ColumnString, false},
	{colTableName, shared.ColumnString, false},
	{colLoad, shared.ColumnBool, false},
}

// createTableSql returns DDL that creates table when it is missing.
func createTableSql(d shared.Dialect, table rdbms.SchemaTable, cols []columnDef, keyCols []string) string {
	defs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		null := "NOT NULL"
		if c.nullable {
			null = "NULL"
		}
		defs = append(defs, fmt.Sprintf("%v %v %v", d.QuoteIdentifier(c.name), d.ColumnType(c.kind), null))
	}
	defs = append(defs, fmt.Sprintf("CONSTRAINT %v PRIMARY KEY (%v)", table.ConstraintName("_pk"), joinColumns(d, keyCols)))
	body := fmt.Sprintf("%v (%v)", table.String(), strings.Join(defs, ", "))
	return d.CreateTableIfNotExists(body, table.String())
}

// EnsureSchema creates the projects and tracked tables tables if they do not exist.
// Schemas used to qualify the table names must exist already.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "create schema"
	return s.withTrackingTx(ctx, op, func(tx shared.Transacter, d shared.Dialect) error {
		stmts := []string{
			createTableSql(d, s.projects, projectColumnDefs, []string{colProjectID}),
			createTableSql(d, s.tables, trackedTableColumnDefs, []string{colProjectID, colTableName}),
		}
		for _, sqltext := range stmts {
			s.log.Debug("executing DDL: ", sqltext)
			if _, err := tx.ExecContext(ctx, sqltext); err != nil {
				return storeError(op, d, err)
			}
		}
		s.log.Info("tracking tables are ready: ", s.projects.String(), ", ", s.tables.String())
		return nil
	})
}
