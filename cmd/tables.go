package cmd

import (
	"github.com/relloyd/ctadmin/actions"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:     "tables",
	Aliases: []string{"table"},
	Short:   "View and change the tables tracked under projects",
}

var tablesListCfg = actions.TablesConfig{LogLevel: "error"}

var tablesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked tables",
	Long:    `List the tables tracked under a project, or under all projects when no project is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tablesListCfg.Tracking.Connections = getConnectionRegistry()
		tablesListCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunTablesList(&tablesListCfg)
	},
}

var tablesUpdateCfg = actions.TablesConfig{LogLevel: "error"}

var tablesUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change fields of tracked tables",
	Long: `Apply field changes to tracked tables, for example:

  ct tables update --project p1 --tables dbo.a,dbo.b --changes load:false

All changes are applied in a single transaction: if any change is invalid then none are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		tablesUpdateCfg.Tracking.Connections = getConnectionRegistry()
		tablesUpdateCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunTablesUpdate(&tablesUpdateCfg)
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesListCmd, tablesUpdateCmd)
	// List.
	tablesListCmd.Flags().SortFlags = false
	switches.addFlag(tablesListCmd, &tablesListCfg.ProjectId, "project", "", false, "")
	switches.addFlag(tablesListCmd, &tablesListCfg.OutputFormat, "output", "csv", false, " (csv|yaml|json)")
	switches.addFlag(tablesListCmd, &tablesListCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(tablesListCmd, &tablesListCfg.Tracking)
	// Update.
	tablesUpdateCmd.Flags().SortFlags = false
	switches.addFlag(tablesUpdateCmd, &tablesUpdateCfg.ProjectId, "project", "", true, "")
	switches.addFlag(tablesUpdateCmd, &tablesUpdateCfg.Tables, "tables", "", true, "")
	switches.addFlag(tablesUpdateCmd, &tablesUpdateCfg.Changes, "changes", "", true, "")
	switches.addFlag(tablesUpdateCmd, &tablesUpdateCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(tablesUpdateCmd, &tablesUpdateCfg.Tracking)
}
