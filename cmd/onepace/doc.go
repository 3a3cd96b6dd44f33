// Command onepace is the command-line entry point for the One Pace
// acquisition pipeline.
//
// Each pipeline step is exposed as its own subcommand so it can be run and
// retried in isolation:
//
//	onepace magnets <url>
//	onepace download <url> <folder>
//	onepace subtitles <reference> <folder>
//	onepace wait <folder>
//	onepace match <video-dir> [subtitle-dir]
//	onepace verify <dir>
//
// The run subcommand chains them into one pass over an arc folder, and
// jobs, check, and config cover the job registry, preflight checks, and
// configuration scaffolding. Commands exit non-zero on failure.
package main
