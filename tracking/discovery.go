package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/rdbms"
)

// Database names are quoted into catalog queries so they are restricted to the characters
// SQL Server, Postgres and MySQL allow in ordinary names.
var reDatabaseName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#@ .-]*$`)

// DiscoveryOptions controls which source tables are discovered.
// The zero value lists tables and views in the default schema, sorted by name.
type DiscoveryOptions struct {
	Schema       string `json:"schema,omitempty" yaml:"schema,omitempty"`
	ExcludeViews bool   `json:"excludeViews,omitempty" yaml:"excludeViews,omitempty"`
	Prefix       string `json:"prefix,omitempty" yaml:"prefix,omitempty"` // e.g. ATK_
	Unordered    bool   `json:"unordered,omitempty" yaml:"unordered,omitempty"`
	// Rule is a JSON Logic expression evaluated against {"table_name": ..., "table_type": "table"|"view"}.
	// Tables are kept when it returns true.
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Discover returns the names of tables found in sourceDatabase using the Store's DiscoveryOptions.
func (s *Store) Discover(ctx context.Context, sourceConnection string, sourceDatabase string) ([]string, error) {
	return s.DiscoverWithOptions(ctx, sourceConnection, sourceDatabase, s.disc)
}

// DiscoverWithOptions queries the catalog of sourceDatabase for table names.
// The source connection is closed before returning.
func (s *Store) DiscoverWithOptions(ctx context.Context, sourceConnection string, sourceDatabase string, opts DiscoveryOptions) ([]string, error) {
	const op = "discover tables"
	if strings.TrimSpace(sourceConnection) == "" {
		return nil, newError(ValidationError, op, errors.New("please supply a source connection"))
	}
	if !reDatabaseName.MatchString(sourceDatabase) {
		return nil, newError(ValidationError, op, errors.Errorf("invalid source database name %q", sourceDatabase))
	}
	if opts.Rule != "" {
		if err := validateRule(opts.Rule); err != nil {
			return nil, newError(ValidationError, op, err)
		}
	}
	db, err := s.openConnection(sourceConnection)
	if err != nil {
		return nil, newError(SourceUnavailable, op, err)
	}
	defer db.Close()
	d := db.GetDialect()
	schema := opts.Schema
	if schema == "" {
		schema = d.DefaultSchema(sourceDatabase)
	}
	sqltext, args := d.TablesQuery(sourceDatabase, schema, !opts.ExcludeViews)
	s.log.Debug("discovering tables using SQL: ", sqltext)
	rows, err := db.QueryContext(ctx, sqltext, args...)
	if err != nil {
		return nil, newError(SourceUnavailable, op, errors.Wrapf(err, "error querying tables in database %q", sourceDatabase))
	}
	defer func() {
		_ = rows.Close()
	}()
	retval := make([]string, 0)
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, newError(SourceUnavailable, op, errors.Wrap(err, "error scanning table name"))
		}
		typ = rdbms.NormaliseTableType(typ)
		if opts.Prefix != "" && !strings.HasPrefix(name, opts.Prefix) {
			continue
		}
		if opts.Rule != "" {
			keep, err := applyRule(opts.Rule, name, typ)
			if err != nil {
				return nil, newError(ValidationError, op, err)
			}
			if !keep {
				continue
			}
		}
		retval = append(retval, name)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(SourceUnavailable, op, err)
	}
	if !opts.Unordered {
		sort.Strings(retval)
	}
	s.log.WithFields(map[string]interface{}{"connection": sourceConnection, "database": sourceDatabase, "tables": len(retval)}).Debug("discovered tables")
	return retval, nil
}

// ListDatabases returns the sorted names of databases or schemas visible to the connection.
func (s *Store) ListDatabases(ctx context.Context, connection string) ([]string, error) {
	const op = "list databases"
	if strings.TrimSpace(connection) == "" {
		return nil, newError(ValidationError, op, errors.New("please supply a connection"))
	}
	db, err := s.openConnection(connection)
	if err != nil {
		return nil, newError(SourceUnavailable, op, err)
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, db.GetDialect().DatabasesQuery())
	if err != nil {
		return nil, newError(SourceUnavailable, op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	retval := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, newError(SourceUnavailable, op, err)
		}
		retval = append(retval, name)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(SourceUnavailable, op, err)
	}
	sort.Strings(retval)
	return retval, nil
}

func validateRule(rule string) error {
	if !jsonlogic.IsValid(strings.NewReader(rule)) {
		return errors.Errorf("invalid discovery rule: %v", rule)
	}
	return nil
}

// applyRule returns true if the JSON Logic rule evaluates to true for the table.
func applyRule(rule string, name string, typ string) (bool, error) {
	data, err := json.Marshal(map[string]string{"table_name": name, "table_type": typ})
	if err != nil {
		return false, errors.Wrap(err, "error marshalling data before applying JSON logic")
	}
	var result bytes.Buffer
	if err = jsonlogic.Apply(strings.NewReader(rule), bytes.NewReader(data), &result); err != nil {
		return false, errors.Wrap(err, "error applying JSON logic")
	}
	return strings.TrimSpace(result.String()) == "true", nil
}
