package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "autotransfer CONFIG_FILE",
		Short: "Transfer files dropped into watched directories to remote hosts",
		Long: `autotransfer watches the input directory of every profile in CONFIG_FILE.
When a file or directory is finalized there (moved in, or its attributes change
after writing) it is sent to the profile's destination with rsync over ssh, then
archived, deleted or left in place. Failed transfers are moved to the profile's
error directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], os.Stdout)
		},
	}
}
