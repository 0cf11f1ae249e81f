// Package mcp exposes the indexed corpus over the Model Context Protocol.
package mcp

// SearchPassagesInput defines the input parameters for the search_passages tool.
type SearchPassagesInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query for finding relevant corpus passages"`
	// MaxResults is the maximum number of passages to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=4,description=Maximum number of passages to return"`
	// MinScore is the minimum similarity threshold (0-1).
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum=0,maximum=1,default=0,description=Minimum similarity score threshold (0-1)"`
}

// SearchPassagesOutput contains the search results.
type SearchPassagesOutput struct {
	// Results is the list of matching passages.
	Results []PassageResult `json:"results"`
	// Message provides informational context (e.g., "No matching passages found").
	Message string `json:"message,omitempty"`
}

// PassageResult is a single passage match from semantic search.
type PassageResult struct {
	// Source is the corpus file the passage came from.
	Source string `json:"source"`
	// Page is the 1-based page number within the source.
	Page int `json:"page"`
	// Score is the similarity score (0-1).
	Score float64 `json:"score"`
	// Text is the passage content.
	Text string `json:"text"`
}

// AskInput defines the input parameters for the ask tool.
type AskInput struct {
	// Question is the natural-language question to answer from the corpus.
	Question string `json:"question" jsonschema:"required,description=The natural-language question to answer from the indexed corpus"`
}

// AskOutput contains the generated answer and its citations.
type AskOutput struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`
	// Sources lists the citation labels backing the answer.
	Sources []string `json:"sources"`
}

// ListTopicsInput defines the input parameters for the list_topics tool.
// This tool takes no parameters.
type ListTopicsInput struct{}

// ListTopicsOutput contains the distinct topic labels of the indexed corpus.
type ListTopicsOutput struct {
	// Topics is the sorted list of distinct topic labels.
	Topics []string `json:"topics"`
	// Count is the number of topics.
	Count int `json:"count"`
}

// StatusInput defines the input parameters for the index_status tool.
// This tool takes no parameters.
type StatusInput struct{}

// StatusOutput reports the current shape of the index.
type StatusOutput struct {
	// IndexedFiles is the number of corpus files recorded in the manifest.
	IndexedFiles int `json:"indexed_files"`
	// IndexedChunks is the number of passages held by the vector index.
	IndexedChunks int `json:"indexed_chunks"`
	// Topics is the distinct topic labels of the indexed corpus.
	Topics []string `json:"topics"`
	// Files lists each indexed source with its topic label.
	Files []IndexedFile `json:"files"`
}

// IndexedFile is one corpus file in the index_status report.
type IndexedFile struct {
	// Source is the corpus file identifier.
	Source string `json:"source"`
	// Topic is the label the file was indexed under.
	Topic string `json:"topic"`
}
