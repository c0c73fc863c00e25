package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigreer/osdgen/internal/version"
)

func newVersionCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the osdgen version",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(root.stdout, "osdgen %s\n", version.Version)
		},
	}
}
