package tracking

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/rdbms"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

const (
	testTrackingConnection = "tracking"
	testSourceConnection   = "source"
)

// testRegistry resolves connections from a map.
type testRegistry map[string]shared.ConnectionDetails

func (r testRegistry) ListConnections(databaseType string) ([]string, error) {
	retval := make([]string, 0, len(r))
	for k := range r {
		retval = append(retval, k)
	}
	return retval, nil
}

func (r testRegistry) LoadConnection(name string) (shared.ConnectionDetails, error) {
	d, ok := r[name]
	if !ok {
		return d, errors.Errorf("connection %q not found", name)
	}
	return d, nil
}

func sqliteConnection(name string, path string) shared.ConnectionDetails {
	return shared.ConnectionDetails{Type: "sqlite", LogicalName: name, Data: map[string]string{"dsn": "sqlite:" + path}}
}

// testEnv holds a tracking store and a source database, both SQLite files in a temp dir.
type testEnv struct {
	dir      string
	registry testRegistry
	opener   *countingOpener
	store    *Store
}

func newTestEnv(dir string, sourceTables ...string) (*testEnv, error) {
	e := &testEnv{
		dir: dir,
		registry: testRegistry{
			testTrackingConnection: sqliteConnection(testTrackingConnection, filepath.Join(dir, "tracking.db")),
			testSourceConnection:   sqliteConnection(testSourceConnection, filepath.Join(dir, "source.db")),
		},
		opener: &countingOpener{open: rdbms.OpenDbConnection},
	}
	var err error
	e.store, err = NewStore(logger.NewNullLogger(), Config{
		Registry:           e.registry,
		TrackingConnection: testTrackingConnection,
		Opener:             e.opener.Open,
	})
	if err != nil {
		return nil, err
	}
	if err = e.store.EnsureSchema(context.Background()); err != nil {
		return nil, err
	}
	if err = e.createSourceTables(sourceTables...); err != nil {
		return nil, err
	}
	return e, nil
}

func mustNewTestEnv(t *testing.T, sourceTables ...string) *testEnv {
	t.Helper()
	e, err := newTestEnv(t.TempDir(), sourceTables...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func (e *testEnv) createSourceTables(tables ...string) error {
	db, err := rdbms.OpenDbConnection(logger.NewNullLogger(), e.registry[testSourceConnection])
	if err != nil {
		return err
	}
	defer db.Close()
	for _, t := range tables {
		if _, err := db.Exec("CREATE TABLE " + t + " (id INTEGER)"); err != nil {
			return err
		}
	}
	return nil
}

// execTracking runs statements against the tracking store, e.g. to install triggers.
func (e *testEnv) execTracking(statements ...string) error {
	db, err := rdbms.OpenDbConnection(logger.NewNullLogger(), e.registry[testTrackingConnection])
	if err != nil {
		return err
	}
	defer db.Close()
	for _, st := range statements {
		if _, err := db.Exec(st); err != nil {
			return err
		}
	}
	return nil
}

// withFaults returns a copy of the env whose Store fails statements that bind any of the values in failOn.
func (e *testEnv) withFaults(failOn ...string) *Store {
	f := &faultyOpener{open: rdbms.OpenDbConnection, failOn: make(map[string]bool)}
	for _, v := range failOn {
		f.failOn[v] = true
	}
	s, err := NewStore(logger.NewNullLogger(), Config{
		Registry:           e.registry,
		TrackingConnection: testTrackingConnection,
		Opener:             f.Open,
	})
	if err != nil {
		panic(err)
	}
	return s
}

func testProject(id string) Project {
	return Project{
		ID:                 id,
		SourceConnectionID: "bu83_mssql",
		SourceDatabase:     "BU83_BIVIEW1",
		BIViewDatabase:     "BU83_BIVIEW",
		ProjectType:        1,
		TrackingDatabase:   "BU83_CT",
		TransferSourceData: true,
		TargetConnectionID: "airflow_postgres",
		TargetSchema:       "ods_bu83",
		TargetType:         "ODS",
		UpdateSchedule:     &Schedule{Cron: "*/15 * * * *", Start: time.Date(2021, 3, 1, 6, 30, 0, 0, time.UTC)},
	}
}

// countingOpener counts open and closed connections.
type countingOpener struct {
	open   Opener
	opened int
	closed int
}

func (c *countingOpener) Open(log logger.Logger, d shared.ConnectionDetails) (shared.Connector, error) {
	db, err := c.open(log, d)
	if err != nil {
		return nil, err
	}
	c.opened++
	return &closeCounter{Connector: db, c: c}, nil
}

type closeCounter struct {
	shared.Connector
	c *countingOpener
}

func (cc *closeCounter) Close() {
	cc.c.closed++
	cc.Connector.Close()
}

// faultyOpener returns connections whose transactions fail to execute statements binding a value in failOn.
type faultyOpener struct {
	open   Opener
	failOn map[string]bool
}

func (f *faultyOpener) Open(log logger.Logger, d shared.ConnectionDetails) (shared.Connector, error) {
	db, err := f.open(log, d)
	if err != nil {
		return nil, err
	}
	return &faultyConnector{Connector: db, failOn: f.failOn}, nil
}

type faultyConnector struct {
	shared.Connector
	failOn map[string]bool
}

func (f *faultyConnector) BeginTx(ctx context.Context) (shared.Transacter, error) {
	tx, err := f.Connector.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Transacter: tx, failOn: f.failOn}, nil
}

type faultyTx struct {
	shared.Transacter
	failOn map[string]bool
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...interface{}) (shared.Result, error) {
	for _, a := range args {
		if s, ok := a.(string); ok && f.failOn[s] {
			return nil, errors.Errorf("simulated failure for %q", s)
		}
	}
	return f.Transacter.ExecContext(ctx, query, args...)
}

// unreachableOpener fails to open any connection.
func unreachableOpener(log logger.Logger, d shared.ConnectionDetails) (shared.Connector, error) {
	return nil, errors.New("connection refused")
}
