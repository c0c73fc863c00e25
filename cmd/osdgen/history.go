package main

import (
	"github.com/spf13/cobra"

	"github.com/sigreer/osdgen/internal/db"
	"github.com/sigreer/osdgen/internal/report"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the assignments of the last generate run",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.settings(cmd)
			if err != nil {
				return err
			}

			store, err := db.New(db.PathIn(cfg.ResultDir))
			if err != nil {
				return failure("failed to open database", err)
			}
			defer store.Close()

			run, err := store.LatestRun()
			if err != nil {
				return failure("", err)
			}
			var rows []db.AssignmentRecord
			if run != nil {
				rows, err = store.RunAssignments(run.ID)
				if err != nil {
					return failure("", err)
				}
			}

			report.PrintHistory(root.stdout, run, rows)
			return nil
		},
	}

	addStoreFlags(cmd.Flags())

	return cmd
}
