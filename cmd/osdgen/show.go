package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sigreer/osdgen/internal/planner"
	"github.com/sigreer/osdgen/internal/report"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show the device catalog and plan of one node",
		Long: `Build the device catalog of a single node and show which devices the
filters select as data, which form the journal pool and how they pair.

The cached introspection record is used when present. Nothing is written
to the result directory.

Examples:
  osdgen show 6f1c2d8e-3b4a-4c5d-8e9f-0a1b2c3d4e5f --device-size 1800
  osdgen show 6f1c2d8e-3b4a-4c5d-8e9f-0a1b2c3d4e5f --journal-pattern nvme --json`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.settings(cmd)
			if err != nil {
				return err
			}
			logger := root.logger(cfg.Debug)

			p, err := planner.New(cfg.SelectionFilters(), logger)
			if err != nil {
				return planError(err)
			}

			loader, store, err := root.loader(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			loader.Reuse = true

			rec, err := loader.LoadHost(cmd.Context(), args[0])
			if err != nil {
				return failure("", err)
			}
			if fetched, ok, err := store.RecordFetchedAt(args[0]); err == nil && ok {
				logger.Info("introspection data", "host", args[0], "fetched", humanize.Time(fetched))
			}
			plan, err := p.PlanHost(rec)
			if err != nil {
				return planError(err)
			}

			if jsonOut {
				return report.PrintJSON(root.stdout, report.Host(plan))
			}
			report.PrintPlan(root.stdout, plan)
			return nil
		},
	}

	addStoreFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	addFilterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
