package extraction

// Unit is a numbered fragment of extracted text. For PDFs and
// presentations the number is the physical page or slide; for formats
// without pages it identifies a fixed-size group of paragraphs or lines.
type Unit struct {
	Number int
	Text   string
}

// Result holds the extracted text of a document together with the
// numbered units it was read from and format-specific metadata such as
// page counts, author and title.
type Result struct {
	FullText string
	Units    []Unit
	Metadata map[string]string
}
