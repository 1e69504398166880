package rag

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/esglens/esglens/index"
	"github.com/esglens/esglens/llm"
	"github.com/esglens/esglens/prompts"
	"github.com/esglens/esglens/retrieve"
)

// maxContextResults is the retrieval budget when the caller supplies no
// context documents.
const maxContextResults = 5

// apologyPrefix opens every degraded response.
const apologyPrefix = "I apologize, but I encountered an error while processing your request: "

// Completer is the slice of the LLM client the generator depends on.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Searcher is the slice of the retriever the generator depends on.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]index.Result, error)
	SearchFrameworks(ctx context.Context, query string, frameworks []string, n int) []index.Result
}

// Request is one generation request.
type Request struct {
	// Query is the user's question.
	Query string

	// ContextDocuments, when non-empty, is used as evidence verbatim and
	// suppresses retrieval.
	ContextDocuments []index.Result

	// FrameworkFocus optionally narrows retrieval and prompt selection to
	// a comma-separated framework list.
	FrameworkFocus string
}

// Answer is the always-well-formed generation result. A failed LLM call
// produces the degraded variant (Degraded true, confidence 0, no
// references) instead of an error: callers never special-case a thrown
// error for a degraded answer, and a zero confidence score is the signal
// to distrust the content.
type Answer struct {
	// Response is the generated text, or the apology message when
	// Degraded is true.
	Response string `json:"response"`

	// References are the retrieval results the answer was grounded on,
	// verbatim.
	References []index.Result `json:"references"`

	// ConfidenceScore in [0,1] measures retrieval grounding strength
	// (inverse mean retrieval distance), not answer correctness.
	ConfidenceScore float64 `json:"confidence_score"`

	// ProcessingTime is the wall-clock duration in seconds, reported on
	// success and failure alike.
	ProcessingTime float64 `json:"processing_time"`

	// SuggestedActions holds up to three follow-up suggestions.
	SuggestedActions []string `json:"suggested_actions"`

	// PromptTemplate is the template the answer was generated with.
	PromptTemplate prompts.TemplateID `json:"prompt_template"`

	// Degraded is true when the LLM call failed and Response carries the
	// apology message.
	Degraded bool `json:"degraded"`
}

// state tracks the generator's progress through one request.
type state int

const (
	stateAssembling state = iota
	stateGenerating
	stateScoring
	stateDone
	stateFailed
)

// Generator runs the RAG pipeline for one query: assemble context,
// generate, score, done — with a terminal failed state reachable from any
// non-done state.
type Generator struct {
	retriever Searcher
	completer Completer
	logger    *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator. Both the retriever and the LLM client
// are injected so tests can substitute fakes.
func NewGenerator(retriever Searcher, completer Completer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		retriever: retriever,
		completer: completer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the pipeline to completion. It never returns an error:
// generation failures surface as the degraded Answer variant.
func (g *Generator) Generate(ctx context.Context, req Request) Answer {
	start := time.Now()

	var (
		results    []index.Result
		selection  prompts.Selection
		completion *llm.Response
		confidence float64
		actions    []string
		failure    error
	)

	st := stateAssembling
	for {
		switch st {
		case stateAssembling:
			results = g.assembleContext(ctx, req)
			selection = prompts.Select(req.Query, req.FrameworkFocus)
			st = stateGenerating

		case stateGenerating:
			var err error
			completion, err = g.completer.Complete(ctx, llm.Request{
				Messages: []llm.Message{
					{Role: "system", Content: selection.System},
					{Role: "user", Content: fmt.Sprintf("Context: %s\n\nQuestion: %s", BuildContext(results), req.Query)},
				},
			})
			if err != nil {
				failure = err
				st = stateFailed
			} else {
				st = stateScoring
			}

		case stateScoring:
			confidence = confidenceScore(results)
			actions = suggestActions(req.Query)
			st = stateDone

		case stateDone:
			answer := Answer{
				Response:         completion.Content,
				References:       results,
				ConfidenceScore:  confidence,
				ProcessingTime:   time.Since(start).Seconds(),
				SuggestedActions: actions,
				PromptTemplate:   selection.ID,
			}
			observeGeneration(time.Since(start), false)
			return answer

		case stateFailed:
			g.logger.Warn("Generation failed, returning degraded response",
				"template", selection.ID,
				"error", failure)
			observeGeneration(time.Since(start), true)
			return Answer{
				Response:         apologyPrefix + failure.Error(),
				References:       []index.Result{},
				ConfidenceScore:  0.0,
				ProcessingTime:   time.Since(start).Seconds(),
				SuggestedActions: []string{degradedAction},
				PromptTemplate:   selection.ID,
				Degraded:         true,
			}
		}
	}
}

// assembleContext returns the evidence set for a request: the caller's
// documents as-is when supplied, otherwise a retrieval (framework fan-out
// when a focus is set). Retrieval failures degrade to an empty evidence
// set; partial evidence beats an aborted answer.
func (g *Generator) assembleContext(ctx context.Context, req Request) []index.Result {
	if len(req.ContextDocuments) > 0 {
		return req.ContextDocuments
	}

	if frameworks := retrieve.SplitFrameworks(req.FrameworkFocus); len(frameworks) > 0 {
		return g.retriever.SearchFrameworks(ctx, req.Query, frameworks, maxContextResults)
	}

	results, err := g.retriever.Search(ctx, req.Query, maxContextResults)
	if err != nil {
		g.logger.Warn("Retrieval failed, generating without grounding", "error", err)
		return nil
	}
	return results
}

// confidenceScore converts retrieval distances into a [0,1] grounding
// score: the inverse of the mean distance, clamped and rounded to two
// decimals. An empty result set scores 0. This is a heuristic proxy for
// how well-grounded the answer is, not a calibrated probability, and it
// deliberately ignores the LLM's own signal.
func confidenceScore(results []index.Result) float64 {
	if len(results) == 0 {
		return 0.0
	}

	var total float64
	for _, r := range results {
		total += r.Distance
	}
	avg := total / float64(len(results))

	confidence := 1.0 - avg
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return math.Round(confidence*100) / 100
}
