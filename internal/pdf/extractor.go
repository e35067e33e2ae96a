// Package pdfutil summarises PDF attachments before they are submitted.
package pdfutil

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
)

// Summary describes a parsed PDF.
type Summary struct {
	Pages   int
	Excerpt string
}

// ExtractText reads PDF bytes and returns the plain text of every page.
func ExtractText(data []byte) (string, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("new pdf reader: %w", err)
	}
	// strings.Builder grows one buffer instead of allocating per concatenation.
	var builder strings.Builder
	// Pages are 1-indexed in ledongthuc/pdf.
	for page := 1; page <= doc.NumPage(); page++ {
		p := doc.Page(page)
		// Some PDFs list pages that carry no object; skip them.
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// Summarize returns the page count and the first maxRunes characters of text,
// whitespace collapsed.
func Summarize(data []byte, maxRunes int) (*Summary, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("new pdf reader: %w", err)
	}
	text, err := ExtractText(data)
	if err != nil {
		return nil, err
	}
	return &Summary{Pages: doc.NumPage(), Excerpt: Excerpt(text, maxRunes)}, nil
}

// Excerpt collapses whitespace and truncates to maxRunes characters, adding an
// ellipsis when something was cut.
func Excerpt(text string, maxRunes int) string {
	// strings.Fields splits on any run of whitespace, including newlines.
	text = strings.Join(strings.Fields(text), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	// Slicing a string cuts bytes; converting to runes keeps characters whole.
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}
