package cmd

import (
	"net"

	"github.com/relloyd/ctadmin/actions"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service to manage change tracking projects",
	Long: `Start a web service that exposes the change tracking projects, their tables and
the connections available to them via a RESTful API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig.Tracking.Connections = getConnectionRegistry()
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveConfig)
	},
}

var serveConfig = actions.WebServerConfig{
	LogLevel: "info",
	Scheme:   "http",
	Addr:     net.IP{0, 0, 0, 0},
	Port:     8080,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(serveCmd, &serveConfig.LogLevel, "log-level", "info", false, "")
	switches.addFlag(serveCmd, &serveConfig.EnsureSchema, "ensure-schema", "false", false, "")
	addTrackingFlags(serveCmd, &serveConfig.Tracking)
	addDiscoveryFlags(serveCmd, &serveConfig.Tracking)
}
