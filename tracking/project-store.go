package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

const colProjectID = "ct_project_id"

var projectColumns = []string{
	colProjectID,
	"source_connection_id",
	"one_c_database",
	"biview_database",
	"biview_project_type",
	"ct_database",
	"transfer_source_data",
	"target_connection_id",
	"target_schema",
	"target_type",
	"update_dags_schedule",
	"update_dags_start",
	"transfer_dags_schedule",
	"transfer_dags_start",
}

// DeleteOptions changes the behaviour of Delete.
type DeleteOptions struct {
	// Cascade removes the tracked tables of the project too.
	Cascade bool
}

// values returns the column values of p in the order of projectColumns.
func (p *Project) values() []interface{} {
	updCron, updStart := scheduleValues(p.UpdateSchedule)
	trnCron, trnStart := scheduleValues(p.TransferSchedule)
	return []interface{}{
		p.ID,
		p.SourceConnectionID,
		p.SourceDatabase,
		nullString(p.BIViewDatabase),
		p.ProjectType,
		p.TrackingDatabase,
		p.TransferSourceData,
		p.TargetConnectionID,
		p.TargetSchema,
		p.TargetType,
		updCron,
		updStart,
		trnCron,
		trnStart,
	}
}

// scheduleValues returns the cron and start columns of s; start times are saved as RFC3339 with nanoseconds in UTC.
func scheduleValues(s *Schedule) (sql.NullString, sql.NullString) {
	if s == nil {
		return sql.NullString{}, sql.NullString{}
	}
	start := sql.NullString{}
	if !s.Start.IsZero() {
		start = sql.NullString{String: s.Start.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	return nullString(s.Cron), start
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanSchedule(c sql.NullString, start sql.NullString) (*Schedule, error) {
	if !c.Valid || c.String == "" {
		return nil, nil
	}
	s := &Schedule{Cron: c.String}
	if start.Valid && start.String != "" {
		t, err := time.Parse(time.RFC3339Nano, start.String)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing schedule start %q", start.String)
		}
		s.Start = t
	}
	return s, nil
}

func scanProject(rows *shared.HpRows) (Project, error) {
	var p Project
	var biview, updCron, updStart, trnCron, trnStart sql.NullString
	err := rows.Scan(
		&p.ID,
		&p.SourceConnectionID,
		&p.SourceDatabase,
		&biview,
		&p.ProjectType,
		&p.TrackingDatabase,
		&p.TransferSourceData,
		&p.TargetConnectionID,
		&p.TargetSchema,
		&p.TargetType,
		&updCron,
		&updStart,
		&trnCron,
		&trnStart,
	)
	if err != nil {
		return p, err
	}
	p.BIViewDatabase = biview.String
	if p.UpdateSchedule, err = scanSchedule(updCron, updStart); err != nil {
		return p, err
	}
	if p.TransferSchedule, err = scanSchedule(trnCron, trnStart); err != nil {
		return p, err
	}
	return p, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*shared.HpRows, error)
}

func (s *Store) selectProjects(ctx context.Context, q querier, d shared.Dialect, where string, args ...interface{}) ([]Project, error) {
	sqltext := fmt.Sprintf("SELECT %v FROM %v", joinColumns(d, projectColumns), s.projects.String())
	if where != "" {
		sqltext += " WHERE " + where
	}
	rows, err := q.QueryContext(ctx, sqltext, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	retval := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning project")
		}
		retval = append(retval, p)
	}
	return retval, rows.Err()
}

func (s *Store) projectExists(ctx context.Context, q querier, d shared.Dialect, id string) (bool, error) {
	sqltext := fmt.Sprintf("SELECT 1 FROM %v WHERE %v = %v",
		s.projects.String(), d.QuoteIdentifier(colProjectID), d.Placeholder(1))
	rows, err := q.QueryContext(ctx, sqltext, id)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = rows.Close()
	}()
	found := rows.Next()
	return found, rows.Err()
}

// Create inserts a new project.
// It fails with ValidationError if p is incomplete and DuplicateKey if the project id exists already.
func (s *Store) Create(ctx context.Context, p Project) error {
	const op = "create project"
	if err := p.Validate(); err != nil {
		return newError(ValidationError, op, err)
	}
	return s.withTrackingTx(ctx, op, func(tx shared.Transacter, d shared.Dialect) error {
		exists, err := s.projectExists(ctx, tx, d, p.ID)
		if err != nil {
			return storeError(op, d, err)
		}
		if exists {
			return newError(DuplicateKey, op, errors.Errorf("project %q already exists", p.ID))
		}
		sqltext := fmt.Sprintf("INSERT INTO %v (%v) VALUES (%v)",
			s.projects.String(), joinColumns(d, projectColumns), shared.Placeholders(d, 1, len(projectColumns)))
		if _, err = tx.ExecContext(ctx, sqltext, p.values()...); err != nil {
			return storeError(op, d, err)
		}
		s.log.WithFields(map[string]interface{}{"project": p.ID}).Info("created project")
		return nil
	})
}

// Get returns the project with the given id or fails with NotFound.
func (s *Store) Get(ctx context.Context, id string) (Project, error) {
	const op = "get project"
	var retval Project
	err := s.withTrackingDb(ctx, op, func(db shared.Connector) error {
		d := db.GetDialect()
		p, err := s.selectProjects(ctx, db, d, fmt.Sprintf("%v = %v", d.QuoteIdentifier(colProjectID), d.Placeholder(1)), id)
		if err != nil {
			return storeError(op, d, err)
		}
		if len(p) == 0 {
			return newError(NotFound, op, errors.Errorf("project %q not found", id))
		}
		retval = p[0]
		return nil
	})
	return retval, err
}

// List returns all projects in no particular order.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	const op = "list projects"
	var retval []Project
	err := s.withTrackingDb(ctx, op, func(db shared.Connector) error {
		var err error
		if retval, err = s.selectProjects(ctx, db, db.GetDialect(), ""); err != nil {
			return storeError(op, db.GetDialect(), err)
		}
		return nil
	})
	return retval, err
}

// ListOrdered returns all projects sorted by id.
func (s *Store) ListOrdered(ctx context.Context) ([]Project, error) {
	p, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(p, func(i, j int) bool { return p[i].ID < p[j].ID })
	return p, nil
}

// Update rewrites the whole row of project id using p.
// p.ID may differ from id in which case the project is renamed; tracked tables keep the old id.
// It fails with NotFound if id does not exist and DuplicateKey if p.ID belongs to another project.
func (s *Store) Update(ctx context.Context, id string, p Project) error {
	const op = "update project"
	if err := p.Validate(); err != nil {
		return newError(ValidationError, op, err)
	}
	return s.withTrackingTx(ctx, op, func(tx shared.Transacter, d shared.Dialect) error {
		exists, err := s.projectExists(ctx, tx, d, id)
		if err != nil {
			return storeError(op, d, err)
		}
		if !exists {
			return newError(NotFound, op, errors.Errorf("project %q not found", id))
		}
		if p.ID != id {
			if exists, err = s.projectExists(ctx, tx, d, p.ID); err != nil {
				return storeError(op, d, err)
			}
			if exists {
				return newError(DuplicateKey, op, errors.Errorf("project %q already exists", p.ID))
			}
		}
		args := append(p.values(), id)
		sqltext := fmt.Sprintf("UPDATE %v SET %v WHERE %v = %v",
			s.projects.String(),
			shared.Assignments(d, 1, quoteColumns(d, projectColumns)),
			d.QuoteIdentifier(colProjectID),
			d.Placeholder(len(projectColumns)+1))
		if _, err = tx.ExecContext(ctx, sqltext, args...); err != nil {
			return storeError(op, d, err)
		}
		s.log.WithFields(map[string]interface{}{"project": id, "newProject": p.ID}).Info("updated project")
		return nil
	})
}

// Delete removes project id. A missing project is not an error.
func (s *Store) Delete(ctx context.Context, id string, opts DeleteOptions) error {
	const op = "delete project"
	return s.withTrackingTx(ctx, op, func(tx shared.Transacter, d shared.Dialect) error {
		where := fmt.Sprintf("%v = %v", d.QuoteIdentifier(colProjectID), d.Placeholder(1))
		if opts.Cascade {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %v WHERE %v", s.tables.String(), where), id); err != nil {
				return storeError(op, d, err)
			}
		}
		res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %v WHERE %v", s.projects.String(), where), id)
		if err != nil {
			return storeError(op, d, err)
		}
		n, _ := res.RowsAffected()
		s.log.WithFields(map[string]interface{}{"project": id, "rows": n, "cascade": opts.Cascade}).Info("deleted project")
		return nil
	})
}
