// Package services defines shared utilities consumed by the workflow engine
// and the stage generators.
//
// Key responsibilities:
//   - Context helpers that stamp session ids, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (transient vs validation vs persistence) so the engine can decide
//     between retrying and ending a run.
//
// Use these helpers when wiring new generator logic so operational behaviour
// stays uniform across the pipeline.
package services
