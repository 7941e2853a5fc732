package tracking

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

// FieldUpdate changes one column of a tracked table.
type FieldUpdate struct {
	TableName string      `json:"table_name"`
	Field     string      `json:"field"`
	NewValue  interface{} `json:"newValue"`
}

// updatableColumns lists the tracked table columns that may be changed with a FieldUpdate
// and converts the supplied value to the column's type.
var updatableColumns = map[string]func(v interface{}) (interface{}, error){
	colLoad: func(v interface{}) (interface{}, error) {
		return helper.ParseBool(v)
	},
}

// UpdatableColumns returns the names of columns accepted by ApplyFieldUpdates.
func UpdatableColumns() []string {
	retval := make([]string, 0, len(updatableColumns))
	for k := range updatableColumns {
		retval = append(retval, k)
	}
	return retval
}

type preparedUpdate struct {
	column string
	value  interface{}
	table  string
}

// ApplyFieldUpdates applies all updates in one transaction. If any update fails none are applied.
// Fields are checked before anything is executed: a field that is not updatable fails with InvalidColumn.
// Rows are matched on table name and, when projectID is not empty, project id.
func (s *Store) ApplyFieldUpdates(ctx context.Context, projectID string, updates []FieldUpdate) error {
	const op = "apply field updates"
	prepared := make([]preparedUpdate, 0, len(updates))
	for _, u := range updates {
		col := strings.ToLower(strings.TrimSpace(u.Field))
		convert, ok := updatableColumns[col]
		if !ok {
			return newError(InvalidColumn, op, errors.Errorf("field %q cannot be updated", u.Field))
		}
		if strings.TrimSpace(u.TableName) == "" {
			return newError(ValidationError, op, errors.New("please supply a table name for every update"))
		}
		v, err := convert(u.NewValue)
		if err != nil {
			return newError(ValidationError, op, errors.Wrapf(err, "invalid value for field %q of table %q", u.Field, u.TableName))
		}
		prepared = append(prepared, preparedUpdate{column: col, value: v, table: u.TableName})
	}
	if len(prepared) == 0 {
		return nil
	}
	return s.withTrackingTx(ctx, op, func(tx shared.Transacter, d shared.Dialect) error {
		for _, u := range prepared {
			sqltext := fmt.Sprintf("UPDATE %v SET %v = %v WHERE %v = %v",
				s.tables.String(), d.QuoteIdentifier(u.column), d.Placeholder(1), d.QuoteIdentifier(colTableName), d.Placeholder(2))
			args := []interface{}{u.value, u.table}
			if projectID != "" {
				sqltext += fmt.Sprintf(" AND %v = %v", d.QuoteIdentifier(colProjectID), d.Placeholder(3))
				args = append(args, projectID)
			}
			res, err := tx.ExecContext(ctx, sqltext, args...)
			if err != nil {
				return storeError(op, d, errors.Wrapf(err, "error updating %v of table %q", u.column, u.table))
			}
			if n, _ := res.RowsAffected(); n == 0 {
				s.log.WithFields(map[string]interface{}{"project": projectID, "table": u.table}).Debug("field update matched no rows")
			}
		}
		s.log.WithFields(map[string]interface{}{"project": projectID, "updates": len(prepared)}).Info("applied field updates")
		return nil
	})
}
