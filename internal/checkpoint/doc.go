// Package checkpoint persists workflow state snapshots keyed by session id.
//
// Every Save is a last-write-wins overwrite of the whole state; a concurrent
// Load observes some previously-saved snapshot, never a partially-written one.
// Because the single owning run issues saves in order, status queries see
// monotonic progress per session. Sessions are fully independent: adapters
// must support concurrent writes to different session ids without
// interference.
//
// Three adapters are provided: an in-memory store for tests and one-shot
// runs, a SQLite store for the daemon, and a Redis store for deployments
// where status queries come from separate processes. All three share the
// snapshot codec in codec.go, so a Load always yields a state detached from
// the engine's working copy.
package checkpoint
