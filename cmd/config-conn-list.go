package cmd

import (
	"fmt"

	"github.com/relloyd/ctadmin/actions"
	"github.com/relloyd/ctadmin/config"
	"github.com/spf13/cobra"
)

var connListCfg = actions.ConnectionListConfig{}

var configConnListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all connections",
	Long: fmt.Sprintf(`List connections stored in config store %q
by printing them all to STDOUT. Passwords are redacted.`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		connListCfg.Connections = getConnectionRegistry()
		return actions.RunConnectionList(&connListCfg)
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
	switches.addFlag(configConnListCmd, &connListCfg.DatabaseType, "database-type", "", false, "")
}
