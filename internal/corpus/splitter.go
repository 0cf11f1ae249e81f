package corpus

import (
	"strings"
	"unicode"
)

// Chunk is the atomic unit of indexing and retrieval: a bounded span of
// one page's text with its provenance. Immutable once created.
type Chunk struct {
	Source  string
	Page    int // 0-based page of origin
	Ordinal int // position within the document
	Text    string
}

// Splitter cuts extracted pages into fixed-size character windows with a
// configurable overlap between neighbors. Cuts back off to the nearest
// whitespace so words stay whole where possible.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter with the given target chunk size and
// overlap, both in characters.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 812
	}
	if overlap < 0 || overlap >= size {
		overlap = 64
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split chunks every page of a document. Ordinals run document-wide so a
// chunk's identity is stable across runs.
func (s *Splitter) Split(doc *Document) []Chunk {
	var chunks []Chunk
	ordinal := 0

	for _, page := range doc.Pages {
		for _, text := range s.splitText(page.Text) {
			chunks = append(chunks, Chunk{
				Source:  doc.Source,
				Page:    page.Number,
				Ordinal: ordinal,
				Text:    text,
			})
			ordinal++
		}
	}

	return chunks
}

func (s *Splitter) splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.size {
		return []string{text}
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := start + s.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = backoffToSpace(runes, start, end)
		}

		part := strings.TrimSpace(string(runes[start:end]))
		if part != "" {
			parts = append(parts, part)
		}
		if end == len(runes) {
			break
		}

		next := end - s.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return parts
}

// backoffToSpace moves a cut point left to the nearest whitespace, unless
// that would shrink the window below half its target size.
func backoffToSpace(runes []rune, start, end int) int {
	limit := start + (end-start)/2
	for i := end; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
