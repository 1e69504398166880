package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esglens/esglens/index"
	"github.com/esglens/esglens/llm"
	"github.com/esglens/esglens/prompts"
)

// fakeRetriever serves canned results and records how it was called.
type fakeRetriever struct {
	results       []index.Result
	err           error
	searchCalls   int
	fanoutCalls   int
	lastFramework []string
}

func (f *fakeRetriever) Search(_ context.Context, _ string, n int) ([]index.Result, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > n {
		return f.results[:n], nil
	}
	return f.results, nil
}

func (f *fakeRetriever) SearchFrameworks(_ context.Context, _ string, frameworks []string, n int) []index.Result {
	f.fanoutCalls++
	f.lastFramework = frameworks
	if len(f.results) > n {
		return f.results[:n]
	}
	return f.results
}

// fakeCompleter returns a fixed completion or error and captures the
// request.
type fakeCompleter struct {
	content string
	err     error
	lastReq llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content, Model: "fake"}, nil
}

func resultAt(id string, distance float64) index.Result {
	return index.Result{
		ID:       id,
		Content:  "content " + id,
		Metadata: map[string]string{index.MetaFilename: id + ".pdf", index.MetaFramework: "TCFD"},
		Distance: distance,
	}
}

func TestGenerator_FrameworkFocus(t *testing.T) {
	retriever := &fakeRetriever{results: []index.Result{resultAt("t1", 0.1)}}
	completer := &fakeCompleter{content: "TCFD requires governance disclosure."}
	g := NewGenerator(retriever, completer)

	answer := g.Generate(context.Background(), Request{
		Query:          "What are TCFD governance requirements?",
		FrameworkFocus: "TCFD",
	})

	assert.Equal(t, 1, retriever.fanoutCalls)
	assert.Equal(t, []string{"TCFD"}, retriever.lastFramework)
	assert.Equal(t, prompts.TemplateTCFD, answer.PromptTemplate)
	assert.Equal(t, "TCFD requires governance disclosure.", answer.Response)
	assert.InDelta(t, 0.9, answer.ConfidenceScore, 0.001)
	assert.False(t, answer.Degraded)
	assert.GreaterOrEqual(t, answer.ProcessingTime, 0.0)

	// The system role carries the selected template, the user role carries
	// context plus the raw query.
	require.Len(t, completer.lastReq.Messages, 2)
	assert.Equal(t, "system", completer.lastReq.Messages[0].Role)
	assert.Equal(t, prompts.Text(prompts.TemplateTCFD), completer.lastReq.Messages[0].Content)
	assert.Contains(t, completer.lastReq.Messages[1].Content, "What are TCFD governance requirements?")
	assert.Contains(t, completer.lastReq.Messages[1].Content, "content t1")
}

func TestGenerator_MultiFramework(t *testing.T) {
	retriever := &fakeRetriever{results: []index.Result{resultAt("g1", 0.2), resultAt("t1", 0.3)}}
	completer := &fakeCompleter{content: "combined guidance"}
	g := NewGenerator(retriever, completer)

	answer := g.Generate(context.Background(), Request{
		Query:          "How do the disclosure scopes differ?",
		FrameworkFocus: "GRI,TCFD",
	})

	assert.Equal(t, []string{"GRI", "TCFD"}, retriever.lastFramework)
	assert.Equal(t, prompts.TemplateCombined, answer.PromptTemplate)
	assert.Contains(t, completer.lastReq.Messages[0].Content, "GRI, TCFD")
}

func TestGenerator_CallerSuppliedContext(t *testing.T) {
	retriever := &fakeRetriever{results: []index.Result{resultAt("ignored", 0.9)}}
	completer := &fakeCompleter{content: "ok"}
	g := NewGenerator(retriever, completer)

	supplied := []index.Result{resultAt("supplied", 0.2)}
	answer := g.Generate(context.Background(), Request{
		Query:            "anything",
		ContextDocuments: supplied,
	})

	assert.Zero(t, retriever.searchCalls, "caller-supplied context suppresses retrieval")
	assert.Zero(t, retriever.fanoutCalls)
	assert.Equal(t, supplied, answer.References)
	assert.InDelta(t, 0.8, answer.ConfidenceScore, 0.001)
}

func TestGenerator_EmptyIndex(t *testing.T) {
	retriever := &fakeRetriever{}
	completer := &fakeCompleter{content: "ungrounded answer"}
	g := NewGenerator(retriever, completer)

	answer := g.Generate(context.Background(), Request{Query: "anything at all"})

	// Generation proceeds ungrounded with the sentinel context.
	assert.Contains(t, completer.lastReq.Messages[1].Content, NoContextSentinel)
	assert.Equal(t, "ungrounded answer", answer.Response)
	assert.Equal(t, 0.0, answer.ConfidenceScore)
	assert.Empty(t, answer.References)
	assert.False(t, answer.Degraded)
}

func TestGenerator_RetrievalFailureDegradesToUngrounded(t *testing.T) {
	retriever := &fakeRetriever{err: fmt.Errorf("index unavailable")}
	completer := &fakeCompleter{content: "still answered"}
	g := NewGenerator(retriever, completer)

	answer := g.Generate(context.Background(), Request{Query: "anything"})

	assert.Equal(t, "still answered", answer.Response)
	assert.Equal(t, 0.0, answer.ConfidenceScore)
	assert.False(t, answer.Degraded, "retrieval failure is not a generation failure")
}

func TestGenerator_DegradedResponse(t *testing.T) {
	retriever := &fakeRetriever{results: []index.Result{resultAt("t1", 0.1)}}
	completer := &fakeCompleter{err: fmt.Errorf("request timed out")}
	g := NewGenerator(retriever, completer)

	answer := g.Generate(context.Background(), Request{Query: "draft a report", FrameworkFocus: "TCFD"})

	assert.True(t, answer.Degraded)
	assert.True(t, strings.HasPrefix(answer.Response, apologyPrefix))
	assert.Contains(t, answer.Response, "request timed out")
	assert.Equal(t, 0.0, answer.ConfidenceScore)
	assert.Empty(t, answer.References)
	require.Len(t, answer.SuggestedActions, 1)
	assert.Equal(t, degradedAction, answer.SuggestedActions[0])
	assert.GreaterOrEqual(t, answer.ProcessingTime, 0.0)
}

func TestGenerator_SuggestedActions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "report family",
			query: "draft our sustainability report",
			want:  intentActions[prompts.IntentReport],
		},
		{
			name:  "compliance family",
			query: "what are the CSRD requirements",
			want:  intentActions[prompts.IntentCompliance],
		},
		{
			name:  "risk family",
			query: "plan the supply chain audit",
			want:  intentActions[prompts.IntentRisk],
		},
		{
			name:  "generic fallback",
			query: "hello",
			want:  genericActions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestActions(tt.query)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxSuggestedActions)
		})
	}
}

func TestGenerator_SuggestedActionsCapped(t *testing.T) {
	// Matches both report and compliance families; the cap still holds.
	got := suggestActions("draft a compliance report")
	assert.Len(t, got, maxSuggestedActions)
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name    string
		results []index.Result
		want    float64
	}{
		{name: "empty", results: nil, want: 0.0},
		{name: "single close", results: []index.Result{{Distance: 0.1}}, want: 0.9},
		{name: "mean of several", results: []index.Result{{Distance: 0.2}, {Distance: 0.4}}, want: 0.7},
		{name: "clamped at zero", results: []index.Result{{Distance: 1.8}}, want: 0.0},
		{name: "rounded to two decimals", results: []index.Result{{Distance: 0.333}}, want: 0.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidenceScore(tt.results)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}
