// Package staticgen provides deterministic stage generators that build a
// learning path from templates instead of a language model. It backs offline
// runs and tests, and serves as the fallback suite when no LLM is configured.
package staticgen
