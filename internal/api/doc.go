// Package api exposes workflow state over HTTP: session status queries, run
// submission, and the delivered package catalog. The status service is a thin
// read layer over the checkpoint store so the CLI and the HTTP server report
// identical views.
package api
