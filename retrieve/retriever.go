// Package retrieve orchestrates similarity queries against the vector
// index, including per-framework fan-out with merge-by-relevance.
package retrieve

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/esglens/esglens/index"
)

// Index is the slice of the vector store the retriever depends on.
type Index interface {
	Query(ctx context.Context, query string, limit int, filter map[string]string) ([]index.Result, error)
}

// fallbackResults is the reduced result count used when a framework-scoped
// sub-query fails and the retriever falls back to an unscoped search.
const fallbackResults = 2

// Retriever issues queries against the vector index.
type Retriever struct {
	index  Index
	logger *slog.Logger
}

// New creates a Retriever over the given index.
func New(idx Index, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{index: idx, logger: logger}
}

// Search runs an unscoped similarity query.
func (r *Retriever) Search(ctx context.Context, query string, n int) ([]index.Result, error) {
	return r.index.Query(ctx, query, n, nil)
}

// SearchByCategory restricts the query to one document category.
func (r *Retriever) SearchByCategory(ctx context.Context, query, category string, n int) ([]index.Result, error) {
	return r.index.Query(ctx, query, n, map[string]string{index.MetaCategory: category})
}

// SearchByFramework restricts the query to one reporting framework.
func (r *Retriever) SearchByFramework(ctx context.Context, query, framework string, n int) ([]index.Result, error) {
	return r.index.Query(ctx, query, n, map[string]string{index.MetaFramework: framework})
}

// SearchFrameworks fans one bounded sub-query out per framework, merges the
// results, re-sorts them ascending by distance and truncates to n. The
// per-framework budget shrinks as the framework list grows so the total
// stays bounded. A failed framework-scoped sub-query falls back to an
// unscoped query for a reduced count; partial evidence beats no evidence,
// so sub-query failures never fail the whole request.
//
// Sub-queries run concurrently but land in per-framework slots, so equal
// distances keep the order in which the sub-queries were issued.
func (r *Retriever) SearchFrameworks(ctx context.Context, query string, frameworks []string, n int) []index.Result {
	if len(frameworks) == 0 {
		return nil
	}

	perFramework := frameworkBudget(len(frameworks))
	slots := make([][]index.Result, len(frameworks))

	var wg sync.WaitGroup
	for i, framework := range frameworks {
		wg.Add(1)
		go func(slot int, fw string) {
			defer wg.Done()

			results, err := r.SearchByFramework(ctx, query, fw, perFramework)
			if err != nil {
				r.logger.Warn("Framework search failed, falling back to general search",
					"framework", fw,
					"error", err)
				results, err = r.Search(ctx, query, fallbackResults)
				if err != nil {
					r.logger.Warn("Fallback search failed, dropping framework",
						"framework", fw,
						"error", err)
					return
				}
			}
			slots[slot] = results
		}(i, framework)
	}
	wg.Wait()

	var merged []index.Result
	for _, results := range slots {
		merged = append(merged, results...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})

	if len(merged) > n {
		merged = merged[:n]
	}
	return merged
}

// frameworkBudget returns the per-framework result budget for a fan-out over
// count frameworks.
func frameworkBudget(count int) int {
	switch {
	case count <= 2:
		return 3
	case count <= 4:
		return 2
	default:
		return 1
	}
}

// SplitFrameworks parses a comma-separated framework list, dropping empty
// entries.
func SplitFrameworks(s string) []string {
	var frameworks []string
	for _, part := range strings.Split(s, ",") {
		if fw := strings.TrimSpace(part); fw != "" {
			frameworks = append(frameworks, fw)
		}
	}
	return frameworks
}
