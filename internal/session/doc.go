// Package session holds the shared workflow state threaded through every
// pipeline stage.
//
// State is owned exclusively by the engine for the lifetime of a run: stages
// receive read-restricted views of it and report results back through typed
// outputs, the engine applies those results, and the checkpoint store persists
// snapshots after every transition. Once a run terminates the state becomes
// read-only and is handed to the caller for extraction.
//
// The message log and error list are append-only for the life of the run.
// Stage outputs are named optional fields rather than a string-keyed map, so
// presence checks (the required-output predicates) are plain nil/len tests
// validated at stage boundaries.
package session
