package cmd

import (
	"github.com/relloyd/ctadmin/actions"
	"github.com/spf13/cobra"
)

var schemaCfg = actions.SchemaConfig{LogLevel: "error"}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the change tracking tables",
}

var schemaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the change tracking tables if they don't exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		schemaCfg.Tracking.Connections = getConnectionRegistry()
		schemaCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunSchemaCreate(&schemaCfg)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaCreateCmd)
	schemaCreateCmd.Flags().SortFlags = false
	switches.addFlag(schemaCreateCmd, &schemaCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(schemaCreateCmd, &schemaCfg.Tracking)
}
