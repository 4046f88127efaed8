package generation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/opendeck/opendeck-api/internal/extraction"
)

// maxContentChars bounds the document text included in a prompt so that
// a single request stays within typical model token limits. Longer
// documents are truncated; providers with small context windows chunk
// instead (see Chunker).
const maxContentChars = 15000

// maxUnitSummaries caps how many per-unit size lines are included in the
// prompt's document information header.
const maxUnitSummaries = 10

// BuildInstructions returns the system instructions for flashcard
// generation. The instructions demand source attribution on every card
// in the form "<document> - Page X" and a JSON object response with a
// "flashcards" array.
func BuildInstructions(documentName string, maxCards int) string {
	return fmt.Sprintf(`You are an expert educational content creator specializing in generating high-quality flashcards from academic materials.

Your task is to analyze the provided document and create up to %d flashcards that:
1. Focus on key concepts, definitions, and important relationships
2. Use clear, concise language appropriate for the subject matter
3. Include precise source attribution for EVERY flashcard

CRITICAL SOURCE ATTRIBUTION REQUIREMENT:
- Every flashcard MUST include a "source" field
- Format: "%[2]s - Page X" or "%[2]s - Page X, Section Y"
- The source must reference the specific page where the information appears
- This is MANDATORY and non-negotiable

Output Format:
Return a JSON object with a "flashcards" array. Each flashcard must have:
- "question": Clear, focused question
- "answer": Comprehensive but concise answer
- "source": REQUIRED precise reference to document page/section

Example:
{
    "flashcards": [
        {
            "question": "What is photosynthesis?",
            "answer": "The process by which plants convert light energy into chemical energy (glucose) using carbon dioxide and water, releasing oxygen as a byproduct.",
            "source": "%[2]s - Page 12, Section 3.2"
        }
    ]
}

Quality Guidelines:
- Focus on understanding, not memorization
- Create questions at different difficulty levels
- Ensure answers are accurate and complete
- Avoid overly broad or vague questions
- Each flashcard should be self-contained`, maxCards, documentName)
}

// BuildContent returns the user-facing part of the prompt: a short
// per-unit size summary followed by the document text, truncated at
// maxContentChars.
func BuildContent(documentText string, units []extraction.Unit) string {
	if len(documentText) > maxContentChars {
		slog.Warn("document text truncated for prompt",
			slog.Int("original_chars", len(documentText)),
			slog.Int("truncated_chars", maxContentChars))
		documentText = documentText[:maxContentChars] + "\n\n[Document truncated...]"
	}

	var info strings.Builder
	for i, u := range units {
		if i >= maxUnitSummaries {
			break
		}
		fmt.Fprintf(&info, "Page %d: %d characters\n", u.Number, len(u.Text))
	}

	return fmt.Sprintf(`Document Information:
%s
Document Content:
%s

Please generate flashcards from this document. Remember to include precise source attribution (page number) for each flashcard.`,
		info.String(), documentText)
}
