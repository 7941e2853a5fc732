package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/rdbms"
	"github.com/relloyd/ctadmin/rdbms/shared"
	"github.com/relloyd/ctadmin/tracking"
)

const (
	testTrackingConnection = "tracking"
	testSourceConnection   = "bu83_mssql"
	testSourceDatabase     = "main"
)

// mapRegistry resolves connections from a map.
type mapRegistry map[string]shared.ConnectionDetails

func (r mapRegistry) ListConnections(databaseType string) ([]string, error) {
	retval := make([]string, 0, len(r))
	for k := range r {
		retval = append(retval, k)
	}
	return retval, nil
}

func (r mapRegistry) LoadConnection(name string) (shared.ConnectionDetails, error) {
	d, ok := r[name]
	if !ok {
		return d, errors.Errorf("connection %q not found", name)
	}
	return d, nil
}

func newMapRegistry(dir string) mapRegistry {
	return mapRegistry{
		testTrackingConnection: sqliteConnection(testTrackingConnection, filepath.Join(dir, "tracking.db")),
		testSourceConnection:   sqliteConnection(testSourceConnection, filepath.Join(dir, "source.db")),
	}
}

func sqliteConnection(name string, path string) shared.ConnectionDetails {
	return shared.ConnectionDetails{Type: "sqlite", LogicalName: name, Data: map[string]string{"dsn": "sqlite:" + path}}
}

func createSourceTables(t *testing.T, reg mapRegistry, tables ...string) {
	t.Helper()
	db, err := rdbms.OpenDbConnection(logger.NewNullLogger(), reg[testSourceConnection])
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, name := range tables {
		if _, err := db.Exec("CREATE TABLE " + name + " (id INTEGER)"); err != nil {
			t.Fatal(err)
		}
	}
}

// handlerEnv serves the web routes from a SQLite tracking store.
// Connections are resolved through a gomock registry backed by reg.
type handlerEnv struct {
	reg      mapRegistry
	mock     *tracking.MockConnectionRegistry
	store    ProjectStore
	router   *mux.Router
	chanStop chan string
}

func newHandlerEnv(t *testing.T, sourceTables ...string) *handlerEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	e := &handlerEnv{
		reg:      newMapRegistry(t.TempDir()),
		mock:     tracking.NewMockConnectionRegistry(ctrl),
		chanStop: make(chan string, 1),
	}
	e.mock.EXPECT().LoadConnection(gomock.Any()).DoAndReturn(e.reg.LoadConnection).AnyTimes()
	var err error
	e.store, err = newProjectStore(logger.NewNullLogger(), &TrackingConfig{
		Connections:        e.mock,
		TrackingConnection: testTrackingConnection,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = e.store.EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	createSourceTables(t, e.reg, sourceTables...)
	e.router = newRouter(logger.NewNullLogger(), e.store, e.chanStop)
	return e
}

func (e *handlerEnv) do(method string, url string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func testProject(id string) tracking.Project {
	return tracking.Project{
		ID:                 id,
		SourceConnectionID: testSourceConnection,
		SourceDatabase:     testSourceDatabase,
		ProjectType:        1,
		TrackingDatabase:   "BU83_CT",
		TransferSourceData: true,
		TargetConnectionID: "airflow_postgres",
		TargetSchema:       "ods_bu83",
		TargetType:         "ODS",
	}
}
