// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists chat sessions, their messages, and the folders
// that organize them. Plain CRUD over SQLite; the question pipeline never
// reads from here.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/constitution-qa/pkg/types"
)

const dbFile = "chats.db"

// Message is one turn in a chat.
type Message struct {
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Chat is a stored session. Messages is populated only by GetChat.
type Chat struct {
	ID        int64     `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Folder    string    `json:"folder,omitempty" yaml:"folder,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Messages  []Message `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Store manages the chat history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at dataDir/chats.db.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS folders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			folder_id INTEGER REFERENCES folders(id) ON DELETE SET NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// CreateChat starts a new chat and returns its id.
func (s *Store) CreateChat(ctx context.Context, title string) (int64, error) {
	if title == "" {
		title = "New Chat"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (title, created_at) VALUES (?, ?)`, title, now())
	if err != nil {
		return 0, fmt.Errorf("creating chat: %w", err)
	}
	return res.LastInsertId()
}

// AppendMessage adds one turn to a chat. Role must be "user" or "assistant".
func (s *Store) AppendMessage(ctx context.Context, chatID int64, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (chat_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		chatID, role, content, now())
	if err != nil {
		return fmt.Errorf("appending message to chat %d: %w", chatID, err)
	}
	return nil
}

// ListChats returns all chats, newest first, without their messages.
func (s *Store) ListChats(ctx context.Context) ([]Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title, COALESCE(f.name, ''), c.created_at
		 FROM chats c LEFT JOIN folders f ON c.folder_id = f.id
		 ORDER BY c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var (
			c       Chat
			created string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Folder, &created); err != nil {
			return nil, fmt.Errorf("scanning chat row: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetChat returns one chat with its messages in insertion order.
func (s *Store) GetChat(ctx context.Context, id int64) (Chat, error) {
	var (
		c       Chat
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.title, COALESCE(f.name, ''), c.created_at
		 FROM chats c LEFT JOIN folders f ON c.folder_id = f.id
		 WHERE c.id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.Folder, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return Chat{}, fmt.Errorf("chat %d not found", id)
		}
		return Chat{}, fmt.Errorf("looking up chat %d: %w", id, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE chat_id = ? ORDER BY id`, id)
	if err != nil {
		return Chat{}, fmt.Errorf("loading messages for chat %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m  Message
			ts string
		)
		if err := rows.Scan(&m.Role, &m.Content, &ts); err != nil {
			return Chat{}, fmt.Errorf("scanning message row: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		c.Messages = append(c.Messages, m)
	}
	return c, rows.Err()
}

// DeleteChat removes a chat and, via cascade, its messages.
func (s *Store) DeleteChat(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting chat %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("chat %d not found", id)
	}
	return nil
}

// MoveChat files a chat under the named folder, creating the folder on
// first use. An empty name removes the chat from its folder.
func (s *Store) MoveChat(ctx context.Context, chatID int64, folder string) error {
	if folder == "" {
		_, err := s.db.ExecContext(ctx,
			`UPDATE chats SET folder_id = NULL WHERE id = ?`, chatID)
		if err != nil {
			return fmt.Errorf("unfiling chat %d: %w", chatID, err)
		}
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO folders (name, created_at) VALUES (?, ?)`,
		folder, now()); err != nil {
		return fmt.Errorf("creating folder %q: %w", folder, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE chats SET folder_id = (SELECT id FROM folders WHERE name = ?) WHERE id = ?`,
		folder, chatID)
	if err != nil {
		return fmt.Errorf("moving chat %d: %w", chatID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("chat %d not found", chatID)
	}
	return nil
}

// ListFolders returns folder names in creation order.
func (s *Store) ListFolders(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM folders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning folder row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
