package tracking

import (
	"github.com/relloyd/ctadmin/logger"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

//go:generate mockgen -source=registry.go -destination=mock_registry.go -package=tracking

// ConnectionRegistry lists and resolves named database connections.
type ConnectionRegistry interface {
	// ListConnections returns the names of connections whose type matches databaseType.
	// An empty databaseType returns all connections.
	ListConnections(databaseType string) ([]string, error)
	// LoadConnection returns the details required to open the named connection.
	LoadConnection(name string) (shared.ConnectionDetails, error)
}

// Opener opens a session using connection details.
// rdbms.OpenDbConnection is used unless the Store is configured otherwise.
type Opener func(log logger.Logger, c shared.ConnectionDetails) (shared.Connector, error)
