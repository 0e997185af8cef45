// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"testing"

	"github.com/pdiddy/constitution-qa/pkg/types"
)

func TestSearchRanksRelevantFirst(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)

	passages, err := store.Search(context.Background(), SearchOptions{
		Query: "deprived of life or personal liberty",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) == 0 {
		t.Fatal("no passages returned")
	}
	if passages[0].Article.Number != "21" {
		t.Errorf("top passage = Article %s, want 21", passages[0].Article.Number)
	}
	for i := 1; i < len(passages); i++ {
		if passages[i].Score > passages[i-1].Score {
			t.Errorf("passages not in descending score order at index %d", i)
		}
	}
}

func TestSearchMatchesArticleNumber(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)

	passages, err := store.Search(context.Background(), SearchOptions{Query: "21A"})
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) == 0 {
		t.Fatal("no passages returned for article-number query")
	}
	found := false
	for _, p := range passages {
		if p.Article.Number == "21A" {
			found = true
		}
	}
	if !found {
		t.Error("article 21A not in results")
	}
}

func TestSearchPartFilter(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)

	passages, err := store.Search(context.Background(), SearchOptions{
		Query: "President of India",
		Part:  "III",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range passages {
		if p.Article.Part != "III" {
			t.Errorf("passage Article %s has part %s, want III only", p.Article.Number, p.Article.Part)
		}
	}
}

func TestSearchMaxResults(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)

	passages, err := store.Search(context.Background(), SearchOptions{
		Query:      "shall",
		MaxResults: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) > 2 {
		t.Errorf("got %d passages, want at most 2", len(passages))
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)
	// Add extra matching articles to exceed the default limit of 5.
	seedArticles(t, store,
		articleWith("100", "The State shall make laws for the whole territory."),
		articleWith("101", "The State shall by law provide for vacation of seats."),
	)

	passages, err := store.Search(context.Background(), SearchOptions{Query: "shall"})
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) > 5 {
		t.Errorf("got %d passages, want at most 5", len(passages))
	}
}

func TestSearchNoMatches(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)

	passages, err := store.Search(context.Background(), SearchOptions{Query: "cryptocurrency blockchain"})
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) != 0 {
		t.Errorf("got %d passages, want 0", len(passages))
	}
}

func TestSearchPunctuationIsSafe(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)

	// Quotes, operators, and parens must never produce a malformed FTS query.
	queries := []string{
		`What does "Article 21" say?`,
		`liberty AND (law OR procedure)`,
		`life-or-liberty!!!`,
	}
	for _, q := range queries {
		if _, err := store.Search(context.Background(), SearchOptions{Query: q}); err != nil {
			t.Errorf("Search(%q) returned error: %v", q, err)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	store := testStore(t)
	seedArticles(t, store, sampleCorpus()...)

	passages, err := store.Search(context.Background(), SearchOptions{Query: "?!,."})
	if err != nil {
		t.Fatal(err)
	}
	if passages != nil {
		t.Errorf("got %v, want nil for termless query", passages)
	}
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"life liberty", `"life" OR "liberty"`},
		{`"Article 21"?!`, `"article" OR "21"`},
		{"...", ""},
	}
	for _, tt := range tests {
		if got := ftsQuery(tt.in); got != tt.want {
			t.Errorf("ftsQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func articleWith(number, content string) types.Article {
	return types.Article{Number: number, Content: content, Part: "VI"}
}
