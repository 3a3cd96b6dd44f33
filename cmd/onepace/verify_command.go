package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"onepace/internal/services"
	"onepace/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <dir>",
		Short: "Check that every video in <dir> has a matching subtitle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.setup("verify")
			if err != nil {
				return err
			}
			dir, err := existingDir(args[0])
			if err != nil {
				return err
			}
			report, err := verify.Dir(dir, cfg.Media.VideoExtension, cfg.Subtitles.Extension)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printVerifyReport(out, report, ctx.colorize(out))
			if !report.OK() {
				return services.Wrap(services.ErrValidation, "verify", "audit",
					fmt.Sprintf("%d of %d videos missing subtitles", report.Missing, len(report.Entries)), nil)
			}
			return nil
		},
	}
}

func printVerifyReport(out io.Writer, report verify.Report, colorize bool) {
	rows := make([][]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		status := "ok"
		if !entry.Present {
			status = "missing"
		}
		rows = append(rows, []string{entry.Video, entry.Subtitle, status})
	}
	fmt.Fprintln(out, renderTable([]string{"Video", "Subtitle", "Status"}, rows, nil))

	if report.OK() {
		printProgress(out, statusOK, colorize, "All %d videos have subtitles", len(report.Entries))
		return
	}
	printProgress(out, statusError, colorize, "%d/%d videos have subtitles", report.Matched, len(report.Entries))
}
