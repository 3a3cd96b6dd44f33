package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onepace/internal/dispatch"
	"onepace/internal/jobs"
	"onepace/internal/logging"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var clearFinished bool

	cmd := &cobra.Command{
		Use:   "jobs [folder]",
		Short: "List torrent downloads started by onepace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup("jobs")
			if err != nil {
				return err
			}
			var target string
			if len(args) == 1 {
				if target, err = targetFolder(cfg, args[0]); err != nil {
					return err
				}
			}

			registry, err := ctx.openRegistry(cfg)
			if err != nil {
				return err
			}
			defer registry.Close()

			out := cmd.OutOrStdout()
			if n, err := registry.Reconcile(cmd.Context(), target, dispatch.JobRunning); err != nil {
				return err
			} else if n > 0 {
				logger.Debug("reconciled finished downloads", logging.Int("count", n))
			}

			if clearFinished {
				removed, err := registry.Clear(cmd.Context(), target)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d finished jobs\n", removed)
				return nil
			}

			list, err := registry.List(cmd.Context(), target)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No download jobs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Download", "Folder", "State", "PID", "Exit", "Started"},
				jobRows(list),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearFinished, "clear", false, "Remove jobs that are no longer running")
	return cmd
}

func jobRows(list []*jobs.Job) [][]string {
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		pid := "-"
		if job.PID > 0 {
			pid = strconv.Itoa(job.PID)
		}
		exit := "-"
		if job.ExitCode != nil {
			exit = strconv.Itoa(*job.ExitCode)
		}
		id := job.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			job.Label(),
			job.TargetDir,
			string(job.State),
			pid,
			exit,
			job.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}
