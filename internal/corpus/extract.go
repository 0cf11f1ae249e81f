package corpus

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Page is one page-addressable block of extracted text. Numbering is
// 0-based; citation formatting converts to the reader-facing 1-based form.
type Page struct {
	Number int
	Text   string
}

// Document is the extracted form of one corpus file.
type Document struct {
	// Source is the file identifier the chunks will carry.
	Source string
	// Topic is a human-readable label for the manifest: the document's
	// title when one can be recovered, the humanized file name otherwise.
	Topic string
	Pages []Page
}

// Extract converts a corpus file's raw bytes into a Document. Formats
// without physical pages synthesize a single page 0.
func Extract(name string, data []byte) (*Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractPDF(name, data)
	case ".md":
		return extractMarkdown(name, data)
	case ".txt":
		return &Document{
			Source: name,
			Topic:  humanizeName(name),
			Pages:  []Page{{Number: 0, Text: string(data)}},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported corpus format %q", filepath.Ext(name))
	}
}

// humanizeName turns "teoria_dos_grafos.pdf" into "Teoria dos grafos".
func humanizeName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(base)
	return strings.ToUpper(string(r)) + base[size:]
}
