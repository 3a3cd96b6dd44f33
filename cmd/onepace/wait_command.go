package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"onepace/internal/poller"
)

func newWaitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <folder>",
		Short: "Block until downloads in <folder> stop changing",
		Long: "Polls <folder> until the video files are present, no partial-download markers\n" +
			"remain, and their sizes hold steady for several checks. Press Ctrl-C to stop\n" +
			"waiting early; that is not treated as an error.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup("wait")
			if err != nil {
				return err
			}
			target, err := targetFolder(cfg, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := ctx.colorize(out)

			printProgress(out, statusInfo, colorize, "Waiting for downloads in %s", target)
			waiter := interruptibleWaiter{poller: newPoller(cfg, logger, waitProgressPrinter(out, colorize))}
			result, err := waiter.Wait(cmd.Context(), target)
			if err != nil {
				return err
			}
			reportWait(out, colorize, result)
			return nil
		},
	}
}

func waitProgressPrinter(out io.Writer, colorize bool) func(poller.Progress) {
	return func(p poller.Progress) {
		printProgress(out, statusInfo, colorize, "%s", describeProgress(p))
	}
}

func describeProgress(p poller.Progress) string {
	switch p.State {
	case poller.StateWaiting:
		return "no video files yet"
	case poller.StateStable:
		return fmt.Sprintf("%d files stable", p.Files)
	default:
		if p.Partials > 0 {
			return fmt.Sprintf("%d files, %d still downloading", p.Files, p.Partials)
		}
		return fmt.Sprintf("%d files, stable check %d/%d", p.Files, p.Counter, p.Threshold)
	}
}

func reportWait(out io.Writer, colorize bool, result poller.Result) {
	if result.Outcome == poller.OutcomeCancelled {
		printProgress(out, statusWarn, colorize, "Stopped waiting with %d videos present; make sure downloads finish before watching", result.Files)
		return
	}
	printProgress(out, statusOK, colorize, "Downloads complete: %d videos", result.Files)
}

// interruptibleWaiter binds SIGINT to the wait only, so an interrupt ends the
// wait early without cancelling the steps around it.
type interruptibleWaiter struct {
	poller *poller.Poller
}

func (w interruptibleWaiter) Wait(ctx context.Context, dir string) (poller.Result, error) {
	waitCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return w.poller.Wait(waitCtx, dir)
}
