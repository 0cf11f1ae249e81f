package chain

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
)

// Passage is one retrieved chunk prepared for citation display: the text
// is HTML-escaped because the client renders it verbatim, and the page is
// kept 0-based here (labels convert to the reader-facing form).
type Passage struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// passagesFrom converts retrieval hits into display passages.
func passagesFrom(hits []index.ScoredChunk) []Passage {
	passages := make([]Passage, 0, len(hits))
	for _, hit := range hits {
		passages = append(passages, Passage{
			Source: hit.Chunk.Source,
			Page:   hit.Chunk.Page,
			Text:   html.EscapeString(hit.Chunk.Text),
		})
	}
	return passages
}

// AggregateLabels dedupes passages by source file, unions their pages and
// formats one label per file: `intro.pdf (p. 1, 3)`. Page numbers are
// displayed 1-based in ascending order; files keep their retrieval order.
func AggregateLabels(passages []Passage) []string {
	pagesBySource := make(map[string]map[int]bool)
	var order []string

	for _, p := range passages {
		pages, seen := pagesBySource[p.Source]
		if !seen {
			pages = make(map[int]bool)
			pagesBySource[p.Source] = pages
			order = append(order, p.Source)
		}
		pages[p.Page] = true
	}

	labels := make([]string, 0, len(order))
	for _, source := range order {
		pages := make([]int, 0, len(pagesBySource[source]))
		for page := range pagesBySource[source] {
			pages = append(pages, page)
		}
		sort.Ints(pages)

		display := make([]string, len(pages))
		for i, page := range pages {
			display[i] = fmt.Sprintf("%d", page+1)
		}
		labels = append(labels, fmt.Sprintf("%s (p. %s)", source, strings.Join(display, ", ")))
	}
	return labels
}
