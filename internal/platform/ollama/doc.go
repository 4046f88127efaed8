// Package ollama implements the generation.Provider interface against a
// local Ollama server. Local models have small context windows, so this
// provider chunks long documents and distributes the card budget across
// chunks.
package ollama
