package tracking

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/rdbms"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

// Table names are interpolated into SQL so they are restricted to [schema.]table made of word characters.
var reTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Config holds what a Store needs to reach the tracking store and the source engines.
type Config struct {
	Registry           ConnectionRegistry `errorTxt:"connection registry" mandatory:"yes"`
	TrackingConnection string             `errorTxt:"tracking store connection name" mandatory:"yes"`
	ProjectsTable      string             `errorTxt:"projects table name" mandatory:"yes"`
	TablesTable        string             `errorTxt:"tracked tables table name" mandatory:"yes"`
	Opener             Opener
	Discovery          DiscoveryOptions
}

// Store implements the project registry, table discovery, sync and field updates.
// It holds no open connections: each call opens the sessions it needs and closes them before returning.
type Store struct {
	log      logger.Logger
	registry ConnectionRegistry
	open     Opener
	conn     string
	projects rdbms.SchemaTable
	tables   rdbms.SchemaTable
	disc     DiscoveryOptions
}

// NewStore validates cfg and returns a Store.
// Empty table names default to ct_projects and ct_tables.
func NewStore(log logger.Logger, cfg Config) (*Store, error) {
	if cfg.ProjectsTable == "" {
		cfg.ProjectsTable = constants.DefaultProjectsTable
	}
	if cfg.TablesTable == "" {
		cfg.TablesTable = constants.DefaultTablesTable
	}
	if cfg.Opener == nil {
		cfg.Opener = rdbms.OpenDbConnection
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, newError(ValidationError, "new store", err)
	}
	for _, t := range []string{cfg.ProjectsTable, cfg.TablesTable} {
		if !reTableName.MatchString(t) {
			return nil, newError(ValidationError, "new store", errors.Errorf("invalid table name %q", t))
		}
	}
	if cfg.Discovery.Rule != "" {
		if err := validateRule(cfg.Discovery.Rule); err != nil {
			return nil, newError(ValidationError, "new store", err)
		}
	}
	return &Store{
		log:      log,
		registry: cfg.Registry,
		open:     cfg.Opener,
		conn:     cfg.TrackingConnection,
		projects: rdbms.SchemaTable{SchemaTable: cfg.ProjectsTable},
		tables:   rdbms.SchemaTable{SchemaTable: cfg.TablesTable},
		disc:     cfg.Discovery,
	}, nil
}

// Registry returns the connection registry used by the Store.
func (s *Store) Registry() ConnectionRegistry {
	return s.registry
}

// openConnection resolves name using the registry and opens it.
func (s *Store) openConnection(name string) (shared.Connector, error) {
	d, err := s.registry.LoadConnection(name)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading connection %q", name)
	}
	db, err := s.open(s.log, d)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening connection %q", name)
	}
	return db, nil
}

// withTrackingDb opens the tracking store, calls fn and closes the connection.
func (s *Store) withTrackingDb(ctx context.Context, op string, fn func(db shared.Connector) error) error {
	db, err := s.openConnection(s.conn)
	if err != nil {
		return newError(TrackingStoreUnavailable, op, err)
	}
	defer db.Close()
	return fn(db)
}

// withTrackingTx opens the tracking store and runs fn in a transaction which is committed if fn returns nil.
// Otherwise the transaction is rolled back and the error from fn is returned.
// The connection is closed on every path.
func (s *Store) withTrackingTx(ctx context.Context, op string, fn func(tx shared.Transacter, d shared.Dialect) error) error {
	return s.withTrackingDb(ctx, op, func(db shared.Connector) error {
		tx, err := db.BeginTx(ctx)
		if err != nil {
			return newError(TrackingStoreUnavailable, op, errors.Wrap(err, "error starting transaction"))
		}
		defer func() {
			if err := tx.Rollback(); err != nil { // no-op once committed.
				s.log.Warn("error rolling back transaction for ", op, ": ", err)
			}
		}()
		if err = fn(tx, db.GetDialect()); err != nil {
			return err
		}
		if err = tx.Commit(); err != nil {
			return newError(TrackingStoreUnavailable, op, errors.Wrap(err, "error committing transaction"))
		}
		return nil
	})
}

// storeError classifies an error returned by the tracking store.
func storeError(op string, d shared.Dialect, err error) error {
	if d != nil && d.IsUniqueViolation(err) {
		return newError(DuplicateKey, op, err)
	}
	return newError(TrackingStoreUnavailable, op, err)
}

func quoteColumns(d shared.Dialect, cols []string) []string {
	retval := make([]string, len(cols))
	for i, c := range cols {
		retval[i] = d.QuoteIdentifier(c)
	}
	return retval
}

func joinColumns(d shared.Dialect, cols []string) string {
	return strings.Join(quoteColumns(d, cols), ", ")
}
