// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds domain structs and configuration shared across stages.
package types

// Article is one article of the Indian Constitution as stored in the corpus
// index. The (Number, Content) pair is unique within the corpus; Content is
// pre-normalized by ingestion (single spaces, no embedded newlines).
type Article struct {
	// Number is the article number, e.g. "21" or "21A".
	Number string `json:"article" yaml:"article"`

	// Content is the normalized article text.
	Content string `json:"content" yaml:"content"`

	// Part is the constitutional part, e.g. "III" for Fundamental Rights.
	Part string `json:"part" yaml:"part"`

	// Chapter is the chapter within the part, if any.
	Chapter string `json:"chapter,omitempty" yaml:"chapter,omitempty"`

	// Section is the section within the chapter, if any.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// Passage is a single retrieved article with its relevance score. Passages
// are transient: they live for one question/answer cycle only.
type Passage struct {
	Article Article `json:"article" yaml:"article"`

	// Score is the relevance score from the full-text index. Higher is
	// more relevant.
	Score float64 `json:"score" yaml:"score"`
}

// Answer is the final result of the question pipeline.
type Answer struct {
	// Text is the user-facing answer. It is either model output (possibly
	// wrapped in fixed framing) or one of the fixed fallback messages.
	Text string `json:"text" yaml:"text"`

	// Sources lists the articles the answer was grounded on. Empty for
	// meta answers, out-of-domain questions, empty retrievals, and
	// upstream failures.
	Sources []Article `json:"sources,omitempty" yaml:"sources,omitempty"`
}
