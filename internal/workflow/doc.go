// Package workflow drives a learning-path session through the fixed stage
// sequence: profile analysis, path planning, content generation, assessment
// generation, and final orchestration.
//
// The engine owns the loop: it executes the node for the current stage,
// checkpoints the session state, asks the router for a verdict, and applies
// the transition. Stage nodes call exactly one generator and write that
// stage's outputs; they never touch control fields. The router is a pure
// function of the state and the stage error, so routing decisions are
// reproducible from any checkpoint.
//
// Retries are bounded per stage. Entering a new stage resets the counter, and
// a run that reaches orchestration with missing upstream outputs gets at most
// one rewind to the earliest incomplete stage before it is failed for good.
package workflow
