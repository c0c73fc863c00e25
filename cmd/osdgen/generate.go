package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sigreer/osdgen/internal/db"
	"github.com/sigreer/osdgen/internal/manifest"
	"github.com/sigreer/osdgen/internal/planner"
	"github.com/sigreer/osdgen/internal/report"
)

type generateOptions struct {
	dryRun  bool
	jsonOut bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Select OSD devices and write one manifest per node",
		Long: `Fetch the introspection data of every bare-metal node, select OSD data
devices with the given filters, pair them round-robin with journal devices
and write <uuid>_devices.yaml into the result directory.

Nodes where no device qualifies get no file. A node with fewer journal
devices than --min-journals-per-host stops the whole run before anything
is written.

Examples:
  osdgen generate --device-size 1800 --rotational Y
  osdgen generate --journal-pattern nvme --min-journals-per-host 2
  osdgen generate --reuse-old-data Y --dry-run --json
  osdgen generate --device-size 1800 --debug Y`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	addStoreFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	addFilterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "plan and print the summary without writing manifests")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the summary as JSON on stdout")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	started := time.Now()

	cfg, err := root.settings(cmd)
	if err != nil {
		return err
	}
	logger := root.logger(cfg.Debug)
	cfg.Log(logger)

	p, err := planner.New(cfg.SelectionFilters(), logger)
	if err != nil {
		return planError(err)
	}

	loader, store, err := root.loader(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	writer := manifest.NewWriter(cfg.ResultDir, logger)
	if !opts.dryRun {
		if _, err := writer.RemoveStale(); err != nil {
			return failure("", err)
		}
	}

	records, err := loader.Load(cmd.Context())
	if err != nil {
		return failure("", err)
	}

	res, err := p.Plan(records)
	if err != nil {
		return planError(err)
	}

	if !opts.dryRun {
		var rows []db.AssignmentRecord
		for _, h := range res.Hosts {
			if _, err := writer.Write(h); err != nil {
				return failure("", err)
			}
			rows = append(rows, assignmentRecords(h)...)
		}
		if _, err := store.RecordRun(started, len(res.Hosts), rows); err != nil {
			return failure("", err)
		}
	}

	if opts.jsonOut {
		return report.PrintJSON(root.stdout, report.Summary(res))
	}
	report.PrintSummary(root.stderr, res)
	return nil
}

func assignmentRecords(plan *planner.HostPlan) []db.AssignmentRecord {
	rows := make([]db.AssignmentRecord, 0, len(plan.Assignments))
	for i, a := range plan.Assignments {
		rows = append(rows, db.AssignmentRecord{
			HostUUID:    plan.HostUUID,
			Position:    i,
			DeviceName:  a.Device.Name,
			DevicePath:  a.DevicePath(),
			JournalPath: a.JournalPath(),
		})
	}
	return rows
}
