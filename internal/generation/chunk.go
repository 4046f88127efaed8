package generation

import (
	"strings"

	"github.com/opendeck/opendeck-api/internal/extraction"
)

// charsPerToken is the rough character-to-token ratio used to estimate
// prompt size without a model-specific tokenizer.
const charsPerToken = 4

// contextBudget is the fraction of the context window available for
// document text; the rest is reserved for instructions and the response.
const contextBudget = 0.7

// Chunk is a slice of a document small enough to fit a provider's
// context window, together with the units it was built from so source
// attribution survives chunking.
type Chunk struct {
	Text  string
	Units []extraction.Unit
}

// Chunker splits documents that exceed a model's context window into
// unit-aligned chunks. Used by local model providers whose windows are
// much smaller than cloud models'.
type Chunker struct {
	// ContextWindowTokens is the model's context window size.
	ContextWindowTokens int
}

// NeedsChunking reports whether the text's estimated token count exceeds
// the usable share of the context window.
func (c Chunker) NeedsChunking(text string) bool {
	estimatedTokens := float64(len(text)) / charsPerToken
	return estimatedTokens > float64(c.ContextWindowTokens)*contextBudget
}

// maxChunkChars is the character budget for a single chunk.
func (c Chunker) maxChunkChars() int {
	return int(float64(c.ContextWindowTokens) * contextBudget * charsPerToken)
}

// Split packs units greedily into chunks that stay under the character
// budget. Unit boundaries are never broken, so a unit larger than the
// budget becomes a chunk of its own. Never returns an empty slice for
// non-empty units.
func (c Chunker) Split(units []extraction.Unit) []Chunk {
	maxChars := c.maxChunkChars()

	var chunks []Chunk
	var texts []string
	var chunkUnits []extraction.Unit
	size := 0

	for _, u := range units {
		if size+len(u.Text) > maxChars && len(texts) > 0 {
			chunks = append(chunks, Chunk{
				Text:  strings.Join(texts, "\n\n"),
				Units: chunkUnits,
			})
			texts = nil
			chunkUnits = nil
			size = 0
		}

		texts = append(texts, u.Text)
		chunkUnits = append(chunkUnits, u)
		size += len(u.Text)
	}

	if len(texts) > 0 {
		chunks = append(chunks, Chunk{
			Text:  strings.Join(texts, "\n\n"),
			Units: chunkUnits,
		})
	}

	return chunks
}

// CardsPerChunk distributes a document-level card budget evenly across
// chunks, guaranteeing at least one card per chunk.
func CardsPerChunk(maxCards, chunkCount int) int {
	if chunkCount <= 0 {
		return maxCards
	}
	per := maxCards / chunkCount
	if per < 1 {
		per = 1
	}
	return per
}
