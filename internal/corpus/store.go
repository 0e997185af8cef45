// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists constitutional articles and builds the full-text
// retrieval index the question pipeline searches.
// See docs/ARCHITECTURE.md § Corpus Index.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/constitution-qa/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "constitution.db"
)

const defaultMaxResults = 5

// Store manages the corpus SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the corpus database at dataDir/index/constitution.db
// and creates the schema if it does not exist.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			number TEXT NOT NULL,
			content TEXT NOT NULL,
			part TEXT NOT NULL,
			chapter TEXT,
			section TEXT,
			UNIQUE(number, content)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_part ON articles(part)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over content and article number, with triggers
	// keeping it in sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(content, number, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, content, number) VALUES (new.rowid, new.content, new.number);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, content, number) VALUES('delete', old.rowid, old.content, old.number);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, content, number) VALUES('delete', old.rowid, old.content, old.number);
				INSERT INTO articles_fts(rowid, content, number) VALUES (new.rowid, new.content, new.number);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Upsert inserts an article or updates the existing record with the same
// (number, content) pair.
func (s *Store) Upsert(ctx context.Context, a types.Article) error {
	if a.Number == "" || a.Content == "" {
		return fmt.Errorf("article number and content are required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (number, content, part, chapter, section)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(number, content) DO UPDATE SET
			part=excluded.part, chapter=excluded.chapter, section=excluded.section`,
		a.Number, normalize(a.Content), a.Part, nullable(a.Chapter), nullable(a.Section),
	)
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", a.Number, err)
	}
	return nil
}

// Get returns the article with the given number. sql.ErrNoRows is wrapped
// into a plain not-found error.
func (s *Store) Get(ctx context.Context, number string) (types.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT number, content, part, chapter, section FROM articles WHERE number = ?`,
		number,
	)
	a, err := scanArticle(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Article{}, fmt.Errorf("article %s not found", number)
		}
		return types.Article{}, fmt.Errorf("looking up article %s: %w", number, err)
	}
	return a, nil
}

// List returns all articles ordered by article number (numeric, then
// lettered suffix: 21 < 21A < 22).
func (s *Store) List(ctx context.Context) ([]types.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, content, part, chapter, section FROM articles`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(articles, func(i, j int) bool {
		return lessArticleNumber(articles[i].Number, articles[j].Number)
	})
	return articles, nil
}

// Count returns the number of articles in the corpus.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

func scanArticle(scan func(...any) error) (types.Article, error) {
	var (
		a       types.Article
		chapter sql.NullString
		section sql.NullString
	)
	if err := scan(&a.Number, &a.Content, &a.Part, &chapter, &section); err != nil {
		return types.Article{}, err
	}
	a.Chapter = chapter.String
	a.Section = section.String
	return a, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// articleNumberPattern splits "21A" into numeric and suffix portions.
var articleNumberPattern = regexp.MustCompile(`^(\d+)([A-Za-z]*)$`)

func lessArticleNumber(a, b string) bool {
	ma := articleNumberPattern.FindStringSubmatch(a)
	mb := articleNumberPattern.FindStringSubmatch(b)
	if ma == nil || mb == nil {
		return a < b
	}
	na, _ := strconv.Atoi(ma[1])
	nb, _ := strconv.Atoi(mb[1])
	if na != nb {
		return na < nb
	}
	return strings.ToUpper(ma[2]) < strings.ToUpper(mb[2])
}

// normalize collapses runs of whitespace to single spaces and trims the
// result, matching what ingestion guarantees for stored content.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
