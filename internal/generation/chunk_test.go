package generation

import (
	"strings"
	"testing"

	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsChunking(t *testing.T) {
	// 1000-token window: budget is 700 tokens, i.e. 2800 characters.
	c := Chunker{ContextWindowTokens: 1000}

	assert.False(t, c.NeedsChunking(strings.Repeat("a", 2800)))
	assert.True(t, c.NeedsChunking(strings.Repeat("a", 2801)))
	assert.False(t, c.NeedsChunking(""))
}

func TestSplitPacksUnitsGreedily(t *testing.T) {
	// Budget is 2800 characters; three 1000-char units pack as 2+1.
	c := Chunker{ContextWindowTokens: 1000}
	units := []extraction.Unit{
		{Number: 1, Text: strings.Repeat("a", 1000)},
		{Number: 2, Text: strings.Repeat("b", 1000)},
		{Number: 3, Text: strings.Repeat("c", 1000)},
	}

	chunks := c.Split(units)

	require.Len(t, chunks, 2)
	require.Len(t, chunks[0].Units, 2)
	assert.Equal(t, 1, chunks[0].Units[0].Number)
	assert.Equal(t, 2, chunks[0].Units[1].Number)
	require.Len(t, chunks[1].Units, 1)
	assert.Equal(t, 3, chunks[1].Units[0].Number)
	assert.Equal(t, strings.Repeat("a", 1000)+"\n\n"+strings.Repeat("b", 1000), chunks[0].Text)
}

func TestSplitOversizedUnitGetsOwnChunk(t *testing.T) {
	c := Chunker{ContextWindowTokens: 1000}
	units := []extraction.Unit{
		{Number: 1, Text: "small"},
		{Number: 2, Text: strings.Repeat("x", 5000)},
		{Number: 3, Text: "tail"},
	}

	chunks := c.Split(units)

	require.Len(t, chunks, 3)
	assert.Equal(t, "small", chunks[0].Text)
	assert.Len(t, chunks[1].Text, 5000)
	assert.Equal(t, "tail", chunks[2].Text)
}

func TestSplitEmptyInput(t *testing.T) {
	c := Chunker{ContextWindowTokens: 1000}

	assert.Empty(t, c.Split(nil))
}

func TestCardsPerChunk(t *testing.T) {
	assert.Equal(t, 10, CardsPerChunk(30, 3))
	assert.Equal(t, 1, CardsPerChunk(2, 5), "budget never drops below one card per chunk")
	assert.Equal(t, 30, CardsPerChunk(30, 0))
}
