// Package llm provides an OpenRouter-style chat-completion client used by the
// LLM-backed stage generators.
//
// The client sends system/user prompts with a JSON-only response format and
// returns the raw JSON payload produced by the model. Generators decode that
// payload into their typed stage outputs with DecodeJSON, which tolerates code
// fences and stray prose around the JSON body.
//
// # Retry behaviour
//
// Requests are retried on HTTP 408/429/5xx and network timeouts with
// exponential backoff (base 1s, max 10s, up to 3 attempts by default).
// Context cancellation aborts retries immediately. These are transport-level
// retries only; semantic failures (unparseable or incomplete output) surface
// to the workflow engine, which applies its own per-stage retry policy.
package llm
