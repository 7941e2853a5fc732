package cmd

import (
	"fmt"

	"github.com/relloyd/ctadmin/actions"
	"github.com/relloyd/ctadmin/config"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/rdbms/shared"
	"github.com/spf13/cobra"
)

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a logical database connection for use as a change tracking store or project source.`,
}

// dsnConnectionType describes a connection type that is added using a DSN.
type dsnConnectionType struct {
	connectionType string
	label          string
	dsnForm        string
}

var dsnConnectionTypes = []dsnConnectionType{
	{
		connectionType: constants.ConnectionTypeSqlServer,
		label:          "SQL Server",
		dsnForm:        "sqlserver://<user>:<pass>@<host>[:<port>][/<instance>][?database=<dbname>&<opt1>=<value1>&...]",
	},
	{
		connectionType: constants.ConnectionTypePostgres,
		label:          "PostgreSQL",
		dsnForm:        "postgres://<user>:<pass>@<host>[:<port>]/<dbname>[?sslmode=disable&<opt1>=<value1>&...]",
	},
	{
		connectionType: constants.ConnectionTypeMySql,
		label:          "MySQL",
		dsnForm:        "mysql://<user>:<pass>@<host>[:<port>]/<dbname>[?<opt1>=<value1>&...]",
	},
	{
		connectionType: constants.ConnectionTypeSqlite,
		label:          "SQLite",
		dsnForm:        "sqlite:/<path-to-database-file>",
	},
}

// newConfigConnAddDsnCmd returns a command that saves a DSN connection of type t.
func newConfigConnAddDsnCmd(t dsnConnectionType) *cobra.Command {
	cfg := &actions.ConnectionConfig{}
	dsnConn := &shared.DsnConnectionDetails{}
	c := &cobra.Command{
		Use:   t.connectionType,
		Short: fmt.Sprintf("Add a %v connection", t.label),
		Long: fmt.Sprintf(`Add %v database connection to the config store %q
by providing a DSN of the form:

%v
`, t.label, config.Connections.FullPath, t.dsnForm),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Type = t.connectionType
			cfg.ConfigFile = getConnectionGetterSetter()
			cfg.ConnDetails = dsnConn
			cmd.SilenceUsage = true
			return actions.RunConnectionAdd(cfg)
		},
	}
	c.Flags().SortFlags = false
	switches.addFlag(c, &cfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(c, &cfg.Force, "force-connection", "", false, "")
	switches.addFlag(c, &dsnConn.Dsn, "dsn", "", true, "")
	return c
}

func initConnAdd() {
	configConnCmd.AddCommand(configConnAddCmd)
	for _, t := range dsnConnectionTypes {
		configConnAddCmd.AddCommand(newConfigConnAddDsnCmd(t))
	}
}
