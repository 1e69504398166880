// Package rag implements the retrieval-augmented generation pipeline:
// context assembly from retrieved chunks, prompt selection, the LLM call
// and the confidence policy governing how retrieved evidence is reported.
package rag

import (
	"fmt"
	"strings"

	"github.com/esglens/esglens/index"
)

// NoContextSentinel is returned by BuildContext when retrieval produced
// nothing. Callers treat it as "proceed without grounding", not as an
// error.
const NoContextSentinel = "No relevant documents found."

// BuildContext renders retrieved chunks into the evidence block handed to
// the LLM. Each result becomes a numbered block with its provenance
// (source filename, framework, category) followed by the chunk text.
// Ordering is preserved from the input, which the retriever has already
// sorted by relevance. BuildContext does no truncation: the caller owns
// the result-count budget, the assembler is pure formatting.
func BuildContext(results []index.Result) string {
	if len(results) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		source := r.Metadata[index.MetaFilename]
		if source == "" {
			source = "Unknown source"
		}
		framework := r.Metadata[index.MetaFramework]
		category := r.Metadata[index.MetaCategory]

		parts = append(parts, fmt.Sprintf("Document %d (Source: %s, Framework: %s, Category: %s):\n%s\n",
			i+1, source, framework, category, r.Content))
	}

	return strings.Join(parts, "\n")
}
