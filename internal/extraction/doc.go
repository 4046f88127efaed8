// Package extraction extracts plain text from uploaded documents (PDF,
// DOCX, PPTX, TXT) while tracking page or slide numbers so that generated
// flashcards can attribute their source material.
package extraction
