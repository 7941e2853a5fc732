package actions

import (
	"context"

	"github.com/relloyd/ctadmin/rdbms/shared"
	"github.com/relloyd/ctadmin/tracking"
)

type ConnectionLoader interface {
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

type ConnectionValidator interface {
	Parse() error
	GetMap(m map[string]string) map[string]string
	GetScheme() (string, error)
}

// ProjectStore is the set of tracking operations served over HTTP and the CLI.
// It is satisfied by *tracking.Store.
type ProjectStore interface {
	Create(ctx context.Context, p tracking.Project) error
	Get(ctx context.Context, id string) (tracking.Project, error)
	ListOrdered(ctx context.Context) ([]tracking.Project, error)
	Update(ctx context.Context, id string, p tracking.Project) error
	Delete(ctx context.Context, id string, opts tracking.DeleteOptions) error
	Sync(ctx context.Context, projectID string, sourceConnection string, sourceDatabase string) (*tracking.SyncResult, error)
	ListTables(ctx context.Context, projectID string) ([]tracking.TrackedTable, error)
	ApplyFieldUpdates(ctx context.Context, projectID string, updates []tracking.FieldUpdate) error
	Discover(ctx context.Context, sourceConnection string, sourceDatabase string) ([]string, error)
	ListDatabases(ctx context.Context, connection string) ([]string, error)
	EnsureSchema(ctx context.Context) error
	Registry() tracking.ConnectionRegistry
}
