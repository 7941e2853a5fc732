package cmd

import (
	"fmt"

	"github.com/relloyd/ctadmin/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure connections",
	Long: fmt.Sprintf(`Configure connections where:

- Connections are stored in file %q
- Default flag values are read from file %q
`, config.Connections.FullPath, config.Main.FullPath),
}

func init() {
	rootCmd.AddCommand(configCmd)
}
