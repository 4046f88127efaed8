// Package gemini implements the generation.Provider interface using
// Google's Gemini API as the card generation backend.
package gemini
