// Package openai implements the generation.Provider interface using the
// OpenAI chat completion API. A custom base URL makes it usable with any
// OpenAI-compatible endpoint.
package openai
