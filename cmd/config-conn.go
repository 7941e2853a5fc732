package cmd

import (
	"fmt"

	"github.com/relloyd/ctadmin/config"
	"github.com/spf13/cobra"
)

var configConnCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn", "connection"},
	Short:   "Configure connection details",
	Long: fmt.Sprintf(`Configure the connections used to store change tracking projects and discover
source tables where:

- Connections are stored in file %q`, config.Connections.FullPath),
}

func init() {
	configCmd.AddCommand(configConnCmd)
	configCmd.Flags().SortFlags = false
	initConnAdd()
	initConnList()
	initConnRemove()
}
