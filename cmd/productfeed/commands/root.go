// Package commands holds the productfeed CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "productfeed",
		Short:         "Infinite-scroll product feed with a paginated page cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(
		NewServeCommand(&configFile),
		NewScrollCommand(&configFile),
		NewVersionCommand(),
	)
	return rootCmd
}
