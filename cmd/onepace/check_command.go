package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"onepace/internal/preflight"
	"onepace/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var indexURL string
	var folder string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check external tools, state directory, and optional targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.setup("check")
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)
			if strings.TrimSpace(folder) != "" {
				target, err := targetFolder(cfg, folder)
				if err != nil {
					return err
				}
				results = append(results, preflight.CheckTarget("Target folder", target))
			}
			if strings.TrimSpace(indexURL) != "" {
				timeout := time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second
				results = append(results, preflight.CheckIndexReachable(cmd.Context(), indexURL, cfg.Scrape.UserAgent, timeout))
			}

			out := cmd.OutOrStdout()
			colorize := ctx.colorize(out)
			printSection(out, "Preflight", colorize)
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, checkKind(r), r.Detail, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "preflight",
					fmt.Sprintf("%d required checks failed", len(failed)), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indexURL, "url", "", "Also check that this torrent index page is reachable")
	cmd.Flags().StringVar(&folder, "folder", "", "Also check that this arc folder can be created")
	return cmd
}

func checkKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}
