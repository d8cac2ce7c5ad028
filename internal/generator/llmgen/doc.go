// Package llmgen implements the stage generators on top of an OpenRouter
// chat-completion client. Each generator renders one prompt, requests a JSON
// completion, and decodes it into the typed stage output; a completion that
// does not parse or fails validation is a stage error, which the engine
// handles through its normal retry path.
//
// Package assembly is deterministic and reuses the staticgen orchestrator.
package llmgen
