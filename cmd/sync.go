package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/relloyd/ctadmin/actions"
	"github.com/spf13/cobra"
)

var syncCfg = actions.SyncConfig{LogLevel: "error"}

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"fetch"},
	Short:   "Register the tables of a source database under a project",
	Long: `Discover the tables of a source database and register them under a project.

- Tables that are already registered are left untouched, so their load flag is preserved.
- New tables are registered with load=true.
- All tables of the project are printed once the sync completes.
- The source connection and database default to those of the project.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSync()
	},
}

func runSync() error {
	syncCfg.Tracking.Connections = getConnectionRegistry()
	syncCfg.StackDumpOnPanic = stackDumpOnPanic
	ctx, cancel := newSignalContext()
	defer cancel()
	_, err := actions.RunSync(ctx, &syncCfg)
	return err
}

// newSignalContext returns a context that is cancelled on interrupt or when the process is asked to terminate.
func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().SortFlags = false
	switches.addFlag(syncCmd, &syncCfg.ProjectId, "project", "", true, "")
	switches.addFlag(syncCmd, &syncCfg.Connection, "connection", "", false, "")
	switches.addFlag(syncCmd, &syncCfg.SourceDatabase, "source-database", "", false, "")
	switches.addFlag(syncCmd, &syncCfg.OutputFormat, "output", "csv", false, " (csv|yaml|json)")
	switches.addFlag(syncCmd, &syncCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(syncCmd, &syncCfg.Tracking)
	addDiscoveryFlags(syncCmd, &syncCfg.Tracking)
}
