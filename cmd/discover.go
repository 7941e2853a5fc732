package cmd

import (
	"github.com/relloyd/ctadmin/actions"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Explore source connections without changing any project",
}

var discoverTablesCfg = actions.DiscoverConfig{LogLevel: "error"}

var discoverTablesCmd = &cobra.Command{
	Use:   "tables <connection>",
	Short: "Print the tables of a source database",
	Long: `Print the tables of a source database, one per line, using the same filters as sync.
Nothing is registered.`,
	Args: getConnectionArgsFunc(&discoverTablesCfg.Connection, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		discoverTablesCfg.Tracking.Connections = getConnectionRegistry()
		discoverTablesCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunDiscover(&discoverTablesCfg)
	},
}

var discoverDatabasesCfg = actions.DiscoverConfig{LogLevel: "error"}

var discoverDatabasesCmd = &cobra.Command{
	Use:   "databases <connection>",
	Short: "Print the databases visible to a connection",
	Args:  getConnectionArgsFunc(&discoverDatabasesCfg.Connection, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		discoverDatabasesCfg.Tracking.Connections = getConnectionRegistry()
		discoverDatabasesCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunDatabaseList(&discoverDatabasesCfg)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.AddCommand(discoverTablesCmd, discoverDatabasesCmd)
	discoverTablesCmd.Flags().SortFlags = false
	switches.addFlag(discoverTablesCmd, &discoverTablesCfg.SourceDatabase, "source-database", "", false, "")
	switches.addFlag(discoverTablesCmd, &discoverTablesCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(discoverTablesCmd, &discoverTablesCfg.Tracking)
	addDiscoveryFlags(discoverTablesCmd, &discoverTablesCfg.Tracking)
	discoverDatabasesCmd.Flags().SortFlags = false
	switches.addFlag(discoverDatabasesCmd, &discoverDatabasesCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(discoverDatabasesCmd, &discoverDatabasesCfg.Tracking)
}
