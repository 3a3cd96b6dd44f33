package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"onepace/internal/magnet"
	"onepace/internal/services"
)

func newMagnetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "magnets <url>",
		Short: "Print the magnet links found on a torrent index page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup("magnets")
			if err != nil {
				return err
			}
			result := newScraper(cfg, logger).Scrape(cmd.Context(), args[0])
			if len(result.Links) == 0 {
				return noMagnetsError(args[0], result)
			}

			out := cmd.OutOrStdout()
			for _, link := range result.Links {
				fmt.Fprintln(out, link)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d magnet links (%s page, %d rows excluded)\n",
				len(result.Links), result.Strategy, result.Excluded)
			return nil
		},
	}
}

// noMagnetsError is the single message for every empty scrape. Fetch
// failures are logged at debug level and are indistinguishable here.
func noMagnetsError(url string, result magnet.Result) error {
	message := "no magnet links found at " + url
	if result.Excluded > 0 {
		message = fmt.Sprintf("%s (%d rows excluded by markers)", message, result.Excluded)
	}
	return services.Wrap(services.ErrMissingInput, "magnets", "scrape", message, nil)
}
