// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve turns an in-domain question into a ranked, bounded set
// of corpus passages. See docs/ARCHITECTURE.md § Retrieval.
package retrieve

import (
	"context"
	"strings"

	"github.com/pdiddy/constitution-qa/internal/corpus"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

// fundamentalRightsPart narrows rights-related queries to Part III
// (Fundamental Rights), trading recall for precision on the corpus's most
// contested vocabulary.
const fundamentalRightsPart = "III"

const defaultLimit = 5

// Searcher is the corpus query contract the retriever consumes. The
// concrete store satisfies it; tests supply fakes.
type Searcher interface {
	Search(ctx context.Context, opts corpus.SearchOptions) ([]types.Passage, error)
}

// Retriever applies retrieval policy on top of the raw index search.
type Retriever struct {
	index Searcher
	limit int
}

// New builds a Retriever returning at most limit passages per query.
// A non-positive limit uses the default of 5.
func New(index Searcher, limit int) *Retriever {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Retriever{index: index, limit: limit}
}

// Retrieve runs a ranked search for query. Queries mentioning "rights" are
// constrained to Part III. Results arrive in descending score order,
// truncated to the configured limit; zero results is a valid outcome and
// returns an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]types.Passage, error) {
	opts := corpus.SearchOptions{
		Query:      query,
		MaxResults: r.limit,
	}
	if strings.Contains(strings.ToLower(query), "rights") {
		opts.Part = fundamentalRightsPart
	}

	passages, err := r.index.Search(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(passages) > r.limit {
		passages = passages[:r.limit]
	}
	return passages, nil
}
