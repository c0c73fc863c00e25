package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigreer/osdgen/internal/report"
)

func newNodesCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List bare-metal node UUIDs",
		Long: `List the UUIDs of the bare-metal nodes known to the introspection service.
With --reuse-old-data the node list saved by an earlier run is printed
without contacting the service.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.settings(cmd)
			if err != nil {
				return err
			}
			logger := root.logger(cfg.Debug)

			loader, store, err := root.loader(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			nodes, err := loader.Nodes(cmd.Context())
			if err != nil {
				return failure("", err)
			}

			if jsonOut {
				if nodes == nil {
					nodes = []string{}
				}
				return report.PrintJSON(root.stdout, nodes)
			}
			for _, n := range nodes {
				fmt.Fprintln(root.stdout, n)
			}
			return nil
		},
	}

	addStoreFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
