// Package generation defines the card generation abstraction and the
// pieces shared by every provider backend: prompt construction, response
// parsing and validation, document chunking for limited context windows,
// and retry with exponential backoff.
//
// Provider implementations live under internal/platform (gemini, openai,
// ollama); this package holds only the provider-independent contract and
// logic so that all backends behave identically.
package generation
