package retrieve

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esglens/esglens/index"
)

// fakeIndex serves canned results keyed by framework filter and records the
// queries it receives.
type fakeIndex struct {
	byFramework map[string][]index.Result
	unscoped    []index.Result
	failing     map[string]bool

	mu    sync.Mutex
	calls []map[string]string
}

func (f *fakeIndex) Query(_ context.Context, _ string, limit int, filter map[string]string) ([]index.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filter)
	f.mu.Unlock()

	if fw, ok := filter[index.MetaFramework]; ok {
		if f.failing[fw] {
			return nil, fmt.Errorf("index unavailable for %s", fw)
		}
		results := f.byFramework[fw]
		if len(results) > limit {
			results = results[:limit]
		}
		return results, nil
	}

	results := f.unscoped
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func result(id string, framework string, distance float64) index.Result {
	return index.Result{
		ID:       id,
		Content:  "content " + id,
		Metadata: map[string]string{index.MetaFramework: framework},
		Distance: distance,
	}
}

func TestSplitFrameworks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "TCFD", want: []string{"TCFD"}},
		{name: "multiple with spaces", input: "GRI, TCFD , SASB", want: []string{"GRI", "TCFD", "SASB"}},
		{name: "empty entries dropped", input: ",GRI,,TCFD,", want: []string{"GRI", "TCFD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitFrameworks(tt.input))
		})
	}
}

func TestRetriever_SearchByFramework(t *testing.T) {
	idx := &fakeIndex{
		byFramework: map[string][]index.Result{
			"TCFD": {result("t1", "TCFD", 0.1)},
		},
	}
	r := New(idx, nil)

	results, err := r.SearchByFramework(context.Background(), "governance", "TCFD", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].ID)

	require.Len(t, idx.calls, 1)
	assert.Equal(t, "TCFD", idx.calls[0][index.MetaFramework])
}

func TestRetriever_SearchFrameworks_MergeSorted(t *testing.T) {
	idx := &fakeIndex{
		byFramework: map[string][]index.Result{
			"GRI":  {result("g1", "GRI", 0.4), result("g2", "GRI", 0.6)},
			"TCFD": {result("t1", "TCFD", 0.1), result("t2", "TCFD", 0.5)},
		},
	}
	r := New(idx, nil)

	merged := r.SearchFrameworks(context.Background(), "materiality", []string{"GRI", "TCFD"}, 5)
	require.Len(t, merged, 4)

	assert.Equal(t, "t1", merged[0].ID)
	for i := 1; i < len(merged); i++ {
		assert.GreaterOrEqual(t, merged[i].Distance, merged[i-1].Distance,
			"merged results must be non-decreasing in distance")
	}
}

func TestRetriever_SearchFrameworks_Truncates(t *testing.T) {
	idx := &fakeIndex{
		byFramework: map[string][]index.Result{
			"GRI":  {result("g1", "GRI", 0.2), result("g2", "GRI", 0.3), result("g3", "GRI", 0.4)},
			"TCFD": {result("t1", "TCFD", 0.1), result("t2", "TCFD", 0.5), result("t3", "TCFD", 0.6)},
		},
	}
	r := New(idx, nil)

	merged := r.SearchFrameworks(context.Background(), "emissions", []string{"GRI", "TCFD"}, 5)
	assert.Len(t, merged, 5)
}

func TestRetriever_SearchFrameworks_StableTieBreak(t *testing.T) {
	// Equal distances preserve the order in which sub-queries were issued.
	idx := &fakeIndex{
		byFramework: map[string][]index.Result{
			"GRI":  {result("g1", "GRI", 0.3)},
			"TCFD": {result("t1", "TCFD", 0.3)},
		},
	}
	r := New(idx, nil)

	merged := r.SearchFrameworks(context.Background(), "audit", []string{"GRI", "TCFD"}, 5)
	require.Len(t, merged, 2)
	assert.Equal(t, "g1", merged[0].ID)
	assert.Equal(t, "t1", merged[1].ID)
}

func TestRetriever_SearchFrameworks_FallbackOnFailure(t *testing.T) {
	idx := &fakeIndex{
		byFramework: map[string][]index.Result{
			"GRI": {result("g1", "GRI", 0.4)},
		},
		unscoped: []index.Result{result("u1", "", 0.2), result("u2", "", 0.7), result("u3", "", 0.8)},
		failing:  map[string]bool{"UNKNOWN": true},
	}
	r := New(idx, nil)

	merged := r.SearchFrameworks(context.Background(), "risk", []string{"GRI", "UNKNOWN"}, 5)

	// The failing framework fell back to an unscoped query for a reduced
	// count instead of failing the request.
	require.Len(t, merged, 3)
	assert.Equal(t, "u1", merged[0].ID)
	assert.Equal(t, "g1", merged[1].ID)
	assert.Equal(t, "u2", merged[2].ID)
}

func TestRetriever_SearchFrameworks_Empty(t *testing.T) {
	r := New(&fakeIndex{}, nil)
	assert.Nil(t, r.SearchFrameworks(context.Background(), "any", nil, 5))
}

func TestFrameworkBudget(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{1, 3}, {2, 3}, {3, 2}, {4, 2}, {5, 1}, {8, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, frameworkBudget(tt.count), "count %d", tt.count)
	}
}
