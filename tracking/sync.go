package tracking

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

const (
	colTableName = "table_name"
	colLoad      = constants.TrackedTableColumnLoad
)

var (
	trackedTableColumns = []string{colProjectID, colTableName, colLoad}
	trackedTableKey     = []string{colProjectID, colTableName}
)

// SyncResult is the outcome of registering discovered tables under a project.
type SyncResult struct {
	ProjectID  string         `json:"ct_project_id"`
	Discovered int            `json:"discovered"`
	Inserted   int            `json:"inserted"`
	Skipped    int            `json:"skipped"` // registered already
	Failed     int            `json:"failed"`
	Tables     []TrackedTable `json:"tables"` // all tables of the project after the sync
}

// Columns returns the names of the TrackedTable fields in the order used by Rows.
func (r *SyncResult) Columns() []string {
	return append([]string(nil), trackedTableColumns...)
}

// Rows returns Tables as rows of values.
func (r *SyncResult) Rows() [][]interface{} {
	retval := make([][]interface{}, len(r.Tables))
	for i, t := range r.Tables {
		retval[i] = []interface{}{t.ProjectID, t.TableName, t.Load}
	}
	return retval
}

// SyncProject registers the tables discovered in sourceDatabase under projectID and returns all tables of the project.
func (s *Store) SyncProject(ctx context.Context, projectID string, sourceConnection string, sourceDatabase string) ([]TrackedTable, error) {
	r, err := s.Sync(ctx, projectID, sourceConnection, sourceDatabase)
	if err != nil {
		return nil, err
	}
	return r.Tables, nil
}

// Sync discovers tables using sourceConnection and inserts a row with load=true for each table that is not registered
// under projectID yet. Existing rows are left alone.
// A table that fails to insert is logged and skipped; the rest are committed together.
func (s *Store) Sync(ctx context.Context, projectID string, sourceConnection string, sourceDatabase string) (*SyncResult, error) {
	const op = "sync project"
	if strings.TrimSpace(projectID) == "" {
		return nil, newError(ValidationError, op, errors.New("please supply a project id"))
	}
	names, err := s.Discover(ctx, sourceConnection, sourceDatabase)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{ProjectID: projectID, Discovered: len(names)}
	err = s.withTrackingTx(ctx, op, func(tx shared.Transacter, d shared.Dialect) error {
		sqltext := d.InsertIgnore(s.tables.String(), quoteColumns(d, trackedTableColumns), quoteColumns(d, trackedTableKey))
		for i, name := range names {
			if err := ctx.Err(); err != nil {
				return newError(TrackingStoreUnavailable, op, err)
			}
			sp := fmt.Sprintf("ct_sync_%d", i)
			if _, err := tx.ExecContext(ctx, d.Savepoint(sp)); err != nil {
				return storeError(op, nil, errors.Wrap(err, "error creating savepoint"))
			}
			res, err := tx.ExecContext(ctx, sqltext, projectID, name, true)
			if err != nil {
				result.Failed++
				s.log.WithFields(map[string]interface{}{"project": projectID, "table": name, "error": err.Error()}).
					Warn("skipping table that could not be registered")
				if _, err := tx.ExecContext(ctx, d.RollbackToSavepoint(sp)); err != nil {
					return storeError(op, nil, errors.Wrap(err, "error rolling back to savepoint"))
				}
				continue
			}
			if n, _ := res.RowsAffected(); n > 0 {
				result.Inserted++
			} else {
				result.Skipped++
			}
			if rel := d.ReleaseSavepoint(sp); rel != "" {
				if _, err := tx.ExecContext(ctx, rel); err != nil {
					return storeError(op, nil, errors.Wrap(err, "error releasing savepoint"))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{
		"project":  projectID,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("synchronised project tables")
	if result.Tables, err = s.ListTables(ctx, projectID); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTables returns the tracked tables of projectID sorted by table name.
// An empty projectID returns the tables of all projects.
func (s *Store) ListTables(ctx context.Context, projectID string) ([]TrackedTable, error) {
	const op = "list tables"
	var retval []TrackedTable
	err := s.withTrackingDb(ctx, op, func(db shared.Connector) error {
		d := db.GetDialect()
		sqltext := fmt.Sprintf("SELECT %v FROM %v", joinColumns(d, trackedTableColumns), s.tables.String())
		var args []interface{}
		if projectID != "" {
			sqltext += fmt.Sprintf(" WHERE %v = %v", d.QuoteIdentifier(colProjectID), d.Placeholder(1))
			args = append(args, projectID)
		}
		sqltext += fmt.Sprintf(" ORDER BY %v, %v", d.QuoteIdentifier(colProjectID), d.QuoteIdentifier(colTableName))
		rows, err := db.QueryContext(ctx, sqltext, args...)
		if err != nil {
			return storeError(op, d, err)
		}
		defer func() {
			_ = rows.Close()
		}()
		retval = make([]TrackedTable, 0)
		for rows.Next() {
			var t TrackedTable
			if err := rows.Scan(&t.ProjectID, &t.TableName, &t.Load); err != nil {
				return storeError(op, d, errors.Wrap(err, "error scanning tracked table"))
			}
			retval = append(retval, t)
		}
		if err := rows.Err(); err != nil {
			return storeError(op, d, err)
		}
		return nil
	})
	return retval, err
}
