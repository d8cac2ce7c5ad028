// Package main hosts the loom CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into workflow
// runs, checkpoint inspection, package catalog queries, daemon startup, and
// configuration scaffolding. It centralizes configuration resolution and
// output rendering so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
