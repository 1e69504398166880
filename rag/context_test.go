package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esglens/esglens/index"
)

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, NoContextSentinel, BuildContext(nil))
	assert.Equal(t, NoContextSentinel, BuildContext([]index.Result{}))
}

func TestBuildContext_NumberedBlocks(t *testing.T) {
	results := []index.Result{
		{
			Content: "Governance disclosures cover board oversight.",
			Metadata: map[string]string{
				index.MetaFilename:  "tcfd_guide.pdf",
				index.MetaFramework: "TCFD",
				index.MetaCategory:  "framework",
			},
			Distance: 0.1,
		},
		{
			Content:  "Emission factors are updated annually.",
			Metadata: map[string]string{index.MetaCategory: "company_data"},
			Distance: 0.4,
		},
	}

	ctx := BuildContext(results)

	assert.Contains(t, ctx, "Document 1 (Source: tcfd_guide.pdf, Framework: TCFD, Category: framework):")
	assert.Contains(t, ctx, "Governance disclosures cover board oversight.")
	// Missing filename falls back to the default label.
	assert.Contains(t, ctx, "Document 2 (Source: Unknown source, Framework: , Category: company_data):")

	// Input order is preserved.
	assert.Less(t, strings.Index(ctx, "Document 1"), strings.Index(ctx, "Document 2"))
}

func TestBuildContext_NoTruncation(t *testing.T) {
	var results []index.Result
	for i := 0; i < 12; i++ {
		results = append(results, index.Result{Content: "chunk", Metadata: map[string]string{}})
	}

	ctx := BuildContext(results)
	assert.Contains(t, ctx, "Document 12")
}
