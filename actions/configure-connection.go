package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/config"
	"github.com/relloyd/ctadmin/helper"
	"github.com/relloyd/ctadmin/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile   ConnectionGetterSetter
	LogicalName  string `errorTxt:"connection name" mandatory:"yes"`
	Type         string
	ConnDetails  ConnectionValidator
	Force        bool
	DatabaseType string // filter used when listing connections
	Out          io.Writer
}

func (cfg *ConnectionConfig) out() io.Writer {
	if cfg.Out == nil {
		return os.Stdout
	}
	return cfg.Out
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	// Setup the basics ready to be persisted below.
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	// Validate connection name.
	if strings.Index(cfg.LogicalName, ".") > 0 {
		return fmt.Errorf("connection name cannot contain period characters '.'")
	}
	if !IsSupportedConnectionType(cfg.Type) {
		return fmt.Errorf("%v is an unsupported connection type, please use one of these: %v", cfg.Type, GetSupportedConnectionTypes())
	}
	// Validate DSN based on connection type.
	if err := cfg.ConnDetails.Parse(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	scheme, err := cfg.ConnDetails.GetScheme()
	if err != nil {
		return err
	}
	if !schemeMatchesConnectionType(scheme, cfg.Type) {
		return fmt.Errorf("DSN scheme %q cannot be used for a %v connection", scheme, cfg.Type)
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	tmpConn := &shared.ConnectionDetails{}
	err = cfg.ConfigFile.Get(cfg.LogicalName, tmpConn)
	if err != nil { // if there is an error finding the connection...
		var keyNotFound config.KeyNotFoundError
		if !errors.As(err, &keyNotFound) { // if the error is real...
			return err
		}
	} else if tmpConn.Type != "" && !cfg.Force { // else if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	// Set config (creates the file if missing).
	err = cfg.ConfigFile.Set(cfg.LogicalName, &connection)
	if err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	_, _ = fmt.Fprintf(cfg.out(), "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	err := cfg.ConfigFile.Delete(cfg.LogicalName)
	if err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	_, _ = fmt.Fprintf(cfg.out(), "Connection %q removed\n", cfg.LogicalName)
	return nil
}

// ConnectionListConfig is used by RunConnectionList.
type ConnectionListConfig struct {
	Connections  ConnectionLister
	DatabaseType string
	Out          io.Writer
}

type ConnectionLister interface {
	ListConnections(databaseType string) ([]string, error)
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

// RunConnectionList prints the connections matching the database type filter with redacted details.
func RunConnectionList(cfg *ConnectionListConfig) error {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	names, err := cfg.Connections.ListConnections(cfg.DatabaseType)
	if err != nil {
		return err
	}
	for _, k := range names { // for each connection name...
		conn, err := cfg.Connections.LoadConnection(k)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%v:\n%v\n", k, conn)
	}
	return nil
}
