// Package daemon wires the configured stores, generator suite, workflow
// engine, and HTTP API into a single-instance background service. A file lock
// in the data directory enforces one daemon per machine.
package daemon
