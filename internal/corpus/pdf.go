package corpus

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls text page by page so chunks keep their page
// provenance. A page whose content stream cannot be decoded degrades to
// printable-rune filtering instead of failing the whole file.
func extractPDF(name string, data []byte) (doc *Document, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parse pdf %s: %v", name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf %s: %w", name, err)
	}

	doc = &Document{
		Source: name,
		Topic:  humanizeName(name),
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			text = string(printableText(page.Content()))
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		doc.Pages = append(doc.Pages, Page{Number: i - 1, Text: text})
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("pdf %s contains no extractable text", name)
	}
	return doc, nil
}

// printableText flattens a page's positioned glyphs, keeping only
// printable runes.
func printableText(content pdf.Content) []byte {
	var out bytes.Buffer
	for _, t := range content.Text {
		for _, r := range t.S {
			if isPrintableRune(r) {
				out.WriteRune(r)
			}
		}
	}
	return out.Bytes()
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	if r >= 32 && r < 127 {
		return true
	}
	return r >= 127 && r <= utf8.MaxRune
}
