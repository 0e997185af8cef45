// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/constitution-qa/internal/httputil"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

// ImportSummary holds counts from a corpus import run.
type ImportSummary struct {
	Saved      int
	Duplicates int
	Failed     int
}

// Total returns the number of articles processed.
func (s ImportSummary) Total() int {
	return s.Saved + s.Duplicates + s.Failed
}

// articleHeading matches the start of an article in plain text,
// e.g. "Article 21" or "Article 21A".
var articleHeading = regexp.MustCompile(`(?i)Article\s+(\d+[A-Za-z]?)`)

// partHeading and chapterHeading locate structural markers inside an
// article's accumulated text.
var (
	partHeading    = regexp.MustCompile(`(?i)PART\s+([A-Z]+)`)
	chapterHeading = regexp.MustCompile(`(?i)CHAPTER\s+([A-Z]+)`)
)

// ImportFile ingests articles from a local YAML or plain-text file.
// Progress lines are written to w.
func (s *Store) ImportFile(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading corpus file: %w", err)
	}

	articles, err := parseCorpus(filepath.Ext(path), data)
	if err != nil {
		return ImportSummary{}, err
	}
	return s.importArticles(ctx, articles, w)
}

// ImportURL downloads a corpus file over HTTP and ingests it. The file
// format is taken from the URL path extension, defaulting to YAML.
func (s *Store) ImportURL(ctx context.Context, url string, httpCfg types.HTTPConfig, w io.Writer) (ImportSummary, error) {
	client := &http.Client{Timeout: httpCfg.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("creating download request: %w", err)
	}
	if httpCfg.UserAgent != "" {
		req.Header.Set("User-Agent", httpCfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("downloading corpus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ImportSummary{}, fmt.Errorf("downloading corpus: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading corpus download: %w", err)
	}
	fmt.Fprintf(w, "downloaded %d bytes\n", len(data))

	articles, err := parseCorpus(filepath.Ext(url), data)
	if err != nil {
		return ImportSummary{}, err
	}
	return s.importArticles(ctx, articles, w)
}

func parseCorpus(ext string, data []byte) ([]types.Article, error) {
	switch strings.ToLower(ext) {
	case ".txt", ".text":
		return splitArticles(string(data)), nil
	default:
		var articles []types.Article
		if err := yaml.Unmarshal(data, &articles); err != nil {
			return nil, fmt.Errorf("parsing corpus YAML: %w", err)
		}
		return articles, nil
	}
}

func (s *Store) importArticles(ctx context.Context, articles []types.Article, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	for _, a := range articles {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		exists, err := s.exists(ctx, a.Number, normalize(a.Content))
		if err != nil {
			fmt.Fprintf(w, "failed  article %s: %v\n", a.Number, err)
			summary.Failed++
			continue
		}
		if exists {
			summary.Duplicates++
			continue
		}

		if err := s.Upsert(ctx, a); err != nil {
			fmt.Fprintf(w, "failed  article %s: %v\n", a.Number, err)
			summary.Failed++
			continue
		}
		summary.Saved++
	}

	fmt.Fprintf(w, "articles processed: %d saved, %d duplicates, %d errors\n",
		summary.Saved, summary.Duplicates, summary.Failed)
	return summary, nil
}

func (s *Store) exists(ctx context.Context, number, content string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM articles WHERE number = ? AND content = ?`,
		number, content,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// splitArticles cuts plain text into articles on "Article N" headings.
// Each article's PART and CHAPTER are pulled from its own text; content
// is whitespace-normalized. PDF extraction is upstream's problem — this
// expects already-extracted text.
func splitArticles(text string) []types.Article {
	var (
		articles []types.Article
		number   string
		body     []string
	)

	flush := func() {
		if number == "" {
			return
		}
		joined := strings.Join(body, " ")
		part := "UNKNOWN"
		if m := partHeading.FindStringSubmatch(joined); m != nil {
			part = strings.ToUpper(m[1])
		}
		chapter := ""
		if m := chapterHeading.FindStringSubmatch(joined); m != nil {
			chapter = strings.ToUpper(m[1])
		}
		articles = append(articles, types.Article{
			Number:  number,
			Content: normalize(joined),
			Part:    part,
			Chapter: chapter,
		})
	}

	for _, line := range strings.Split(text, "\n") {
		if m := articleHeading.FindStringSubmatch(line); m != nil {
			flush()
			number = strings.ToUpper(m[1])
			body = []string{line}
			continue
		}
		if number != "" {
			body = append(body, line)
		}
	}
	flush()

	return articles
}
