package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"onepace/internal/episodes"
	"onepace/internal/services"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "match <video-dir> [subtitle-dir]",
		Short: "Rename subtitles to the video files they belong to",
		Long: "Pairs subtitles with videos by episode number and renames each subtitle to its\n" +
			"video's base name inside <video-dir>. Subtitles are read from <video-dir> when\n" +
			"no subtitle directory is given.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup("match")
			if err != nil {
				return err
			}
			videoDir, err := existingDir(args[0])
			if err != nil {
				return err
			}
			subtitleDir := videoDir
			if len(args) == 2 {
				if subtitleDir, err = existingDir(args[1]); err != nil {
					return err
				}
			}

			report, err := newMatcher(cfg, logger, dryRun).Match(cmd.Context(), videoDir, subtitleDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printMatchReport(out, report, ctx.colorize(out))
			if report.Matched == 0 {
				return services.Wrap(services.ErrValidation, "match", "pair",
					fmt.Sprintf("no subtitles matched any of %d videos", report.Videos), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the pairing without renaming anything")
	return cmd
}

func printMatchReport(out io.Writer, report episodes.Report, colorize bool) {
	if len(report.Pairs) > 0 {
		rows := make([][]string, 0, len(report.Pairs))
		for _, pair := range report.Pairs {
			rows = append(rows, []string{
				episodes.FormatNumber(pair.Episode),
				pair.Subtitle,
				filepath.Base(pair.Target),
				pairStatus(pair, report.DryRun),
			})
		}
		fmt.Fprintln(out, renderTable([]string{"Ep", "Subtitle", "Renamed To", "Status"}, rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
	}

	for _, video := range report.Unmatched {
		printProgress(out, statusWarn, colorize, "No subtitle for %s", video)
	}
	for _, sub := range report.Unnumbered {
		printProgress(out, statusWarn, colorize, "No episode number in %s", sub)
	}
	for _, dup := range report.Duplicates {
		printProgress(out, statusWarn, colorize, "Episode %s has several subtitles; using %s over %s",
			episodes.FormatNumber(dup.Episode), dup.Kept, dup.Replaced)
	}

	kind := statusOK
	if !report.Complete() {
		kind = statusWarn
	}
	arc := report.Arc
	if arc == "" {
		arc = "unknown arc"
	}
	summary := fmt.Sprintf("%d/%d videos matched (%s)", report.Matched, report.Videos, arc)
	if report.DryRun {
		summary += ", dry run"
	}
	printProgress(out, kind, colorize, "%s", summary)
}

func pairStatus(pair episodes.Pair, dryRun bool) string {
	switch {
	case pair.Err != nil:
		return "error: " + pair.Err.Error()
	case dryRun:
		return "planned"
	case pair.Renamed:
		return "renamed"
	default:
		return "in place"
	}
}

