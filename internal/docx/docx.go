// Package docx extracts plain text from word-processing documents: the
// concatenated body paragraphs followed by every table cell, matching the
// order the rest of the pipeline expects.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ExtractText reads a .docx byte stream (a zip archive holding
// word/document.xml) and returns its paragraph and table-cell text joined by
// newlines. Blank paragraphs and cells are dropped.
func ExtractText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx archive has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return extractDocumentText(rc)
}

// extractDocumentText walks the document XML once, collecting body paragraphs
// and then table cells (a cell's paragraphs join into one entry).
func extractDocumentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs, cells []string
	var para, cell strings.Builder
	tableDepth := 0
	cellDepth := 0

	flush := func(b *strings.Builder, dst *[]string) {
		s := strings.TrimRight(b.String(), "\n")
		if strings.TrimSpace(s) != "" {
			*dst = append(*dst, s)
		}
		b.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tc":
				cellDepth++
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", fmt.Errorf("parse document.xml: %w", err)
				}
				if cellDepth > 0 {
					cell.WriteString(text)
				} else if tableDepth == 0 {
					para.WriteString(text)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "tc":
				cellDepth--
				if cellDepth == 0 {
					flush(&cell, &cells)
				}
			case "p":
				if tableDepth == 0 {
					flush(&para, &paragraphs)
				} else if cellDepth > 0 {
					// Paragraph break inside a cell.
					cell.WriteString("\n")
				}
			}
		}
	}

	return strings.Join(append(paragraphs, cells...), "\n"), nil
}
