package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database and provides access to repositories.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// StruggleRepo returns a StruggleRepo backed by this store.
func (s *Store) StruggleRepo() StruggleRepo {
	return &struggleRepo{db: s.db}
}

// DifficultyRepo returns a DifficultyRepo backed by this store.
func (s *Store) DifficultyRepo() DifficultyRepo {
	return &difficultyRepo{db: s.db}
}

// HintEventRepo returns a HintEventRepo backed by this store.
func (s *Store) HintEventRepo() HintEventRepo {
	return &hintEventRepo{db: s.db}
}

// LLMEventRepo returns an LLMEventRepo backed by this store.
func (s *Store) LLMEventRepo() LLMEventRepo {
	return &llmEventRepo{db: s.db}
}

// applyPragmas configures SQLite for single-process service use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// createSchema creates all tables if they do not exist.
func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS struggles (
			session_id  TEXT NOT NULL,
			question_id TEXT NOT NULL,
			description TEXT NOT NULL,
			clarity     TEXT NOT NULL,
			confidence  REAL NOT NULL,
			confirmed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (session_id, question_id)
		)`,
		`CREATE TABLE IF NOT EXISTS difficulty_state (
			user_id        TEXT NOT NULL,
			topic          TEXT NOT NULL,
			level          INTEGER NOT NULL,
			attempts       INTEGER NOT NULL,
			successes      INTEGER NOT NULL,
			avg_confidence REAL NOT NULL,
			updated_at     TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS hint_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id    TEXT NOT NULL,
			question_type TEXT NOT NULL,
			source        TEXT NOT NULL,
			latency_ms    INTEGER NOT NULL,
			tokens        INTEGER NOT NULL,
			cost_usd      REAL NOT NULL,
			created_at    TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS llm_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL,
			purpose       TEXT NOT NULL,
			input_tokens  INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			latency_ms    INTEGER NOT NULL,
			success       INTEGER NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. HINTLOOP_DB environment variable
// 2. $XDG_DATA_HOME/hintloop/hintloop.db
// 3. ~/.local/share/hintloop/hintloop.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("HINTLOOP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "hintloop", "hintloop.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
