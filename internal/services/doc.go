// Package services defines shared utilities consumed by the pipeline steps and
// the clients that drive external tools.
//
// Key responsibilities:
//   - Context helpers that stamp pipeline run IDs and step names for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     transport, external-tool, or missing-input problems.
//
// Use these helpers when wiring new step logic so error reporting stays uniform
// across the pipeline.
package services
