package extraction

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// slidePathPattern matches the slide parts of a PPTX archive and captures
// the slide number.
var slidePathPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX reads a PowerPoint file and produces one unit per slide.
// A PPTX is a ZIP archive of XML parts; slide text lives in a:t runs
// inside ppt/slides/slideN.xml, which covers text boxes, placeholders
// and table cells alike. Slides with no text still yield an empty unit
// so slide numbering stays aligned with the deck.
func extractPPTX(path string) (*Result, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer archive.Close()

	slides := map[int]*zip.File{}
	maxSlide := 0
	var coreProps *zip.File
	for _, f := range archive.File {
		if m := slidePathPattern.FindStringSubmatch(f.Name); m != nil {
			num, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			slides[num] = f
			if num > maxSlide {
				maxSlide = num
			}
		}
		if f.Name == "docProps/core.xml" {
			coreProps = f
		}
	}

	var units []Unit
	var parts []string
	for slideNum := 1; slideNum <= maxSlide; slideNum++ {
		f, ok := slides[slideNum]
		if !ok {
			continue
		}
		text, err := readSlideText(f)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", slideNum, err)
		}
		units = append(units, Unit{Number: slideNum, Text: text})
		if text != "" {
			parts = append(parts, text)
		}
	}

	metadata := map[string]string{
		"format":      "PPTX",
		"slide_count": strconv.Itoa(len(units)),
	}
	if coreProps != nil {
		addCoreProperties(coreProps, metadata)
	}

	return &Result{
		FullText: strings.Join(parts, "\n\n"),
		Units:    units,
		Metadata: metadata,
	}, nil
}

// readSlideText streams a slide part and joins its paragraphs with
// newlines. Text runs are a:t elements in the DrawingML namespace;
// paragraphs are a:p elements.
func readSlideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	const drawingMLNS = "http://schemas.openxmlformats.org/drawingml/2006/main"

	var lines []string
	var paragraph strings.Builder
	inRun := false

	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == drawingMLNS && t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			if t.Name.Space == drawingMLNS && t.Name.Local == "t" {
				inRun = false
			}
			if t.Name.Space == drawingMLNS && t.Name.Local == "p" {
				if line := strings.TrimSpace(paragraph.String()); line != "" {
					lines = append(lines, line)
				}
				paragraph.Reset()
			}
		case xml.CharData:
			if inRun {
				paragraph.Write(t)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}

// addCoreProperties pulls author and title out of docProps/core.xml.
func addCoreProperties(f *zip.File, metadata map[string]string) {
	rc, err := f.Open()
	if err != nil {
		return
	}
	defer rc.Close()

	var props struct {
		Creator string `xml:"http://purl.org/dc/elements/1.1/ creator"`
		Title   string `xml:"http://purl.org/dc/elements/1.1/ title"`
	}
	if err := xml.NewDecoder(rc).Decode(&props); err != nil {
		return
	}
	if props.Creator != "" {
		metadata["author"] = props.Creator
	}
	if props.Title != "" {
		metadata["title"] = props.Title
	}
}
