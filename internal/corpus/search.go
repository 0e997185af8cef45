// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/constitution-qa/pkg/types"
)

// SearchOptions holds parameters for a ranked corpus query.
type SearchOptions struct {
	// Query is the raw question text. It is tokenized into an FTS5 OR
	// query over article content and number.
	Query string

	// Part, when non-empty, constrains results to articles in that
	// constitutional part.
	Part string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Search runs a relevance-ranked full-text query and returns passages in
// descending score order, truncated to MaxResults. A query matching
// nothing returns an empty slice, not an error.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]types.Passage, error) {
	match := ftsQuery(opts.Query)
	if match == "" {
		return nil, nil
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT a.number, a.content, a.part, a.chapter, a.section, articles_fts.rank
		FROM articles_fts
		JOIN articles a ON a.rowid = articles_fts.rowid
		WHERE articles_fts MATCH ?`)
	args = append(args, match)

	if opts.Part != "" {
		qb.WriteString(` AND a.part = ?`)
		args = append(args, opts.Part)
	}

	// FTS5 rank is a negated BM25 score: smaller is better, so ascending
	// order yields the most relevant rows first.
	qb.WriteString(` ORDER BY articles_fts.rank LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus index: %w", err)
	}
	defer rows.Close()

	var passages []types.Passage
	for rows.Next() {
		var (
			p       types.Passage
			chapter sql.NullString
			section sql.NullString
			rank    float64
		)
		if err := rows.Scan(
			&p.Article.Number, &p.Article.Content, &p.Article.Part,
			&chapter, &section, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning passage row: %w", err)
		}
		p.Article.Chapter = chapter.String
		p.Article.Section = section.String
		p.Score = -rank
		passages = append(passages, p)
	}

	return passages, rows.Err()
}

// ftsQuery converts free text into an FTS5 match expression. Terms are
// quoted and joined with OR so punctuation in the question can never
// produce a malformed query. Returns "" when the text holds no terms.
func ftsQuery(text string) string {
	terms := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}
