// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/storytype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrUserExists is returned when creating a username that is already taken.
var ErrUserExists = errors.New("user already exists")

const timeLayout = time.RFC3339Nano

// Store wraps SQLite access for users and their runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);`,
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id),
			series BLOB,
			score INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_user_created ON scores(user_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// FindUser looks a user up by name. It returns nil and no error when the
// user does not exist.
func (s *Store) FindUser(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user %q: %w", username, err)
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)
		 RETURNING id, username, password_hash, created_at`, username, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.User{}, fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		return model.User{}, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return user, nil
}

// EnsureUser returns the named user, creating it with passwordHash when
// missing.
func (s *Store) EnsureUser(ctx context.Context, username, passwordHash string) (model.User, error) {
	existing, err := s.FindUser(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	return s.CreateUser(ctx, username, passwordHash)
}

// InsertScore appends a finished run. ID and CreatedAt are assigned by the
// database.
func (s *Store) InsertScore(ctx context.Context, rec model.ScoreRecord) (model.ScoreRecord, error) {
	series := rec.Series
	if series == nil {
		series = []byte{}
	}
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO scores (run_id, user_id, series, score, wrong) VALUES (?, ?, ?, ?, ?)
		 RETURNING id, created_at`,
		rec.RunID, rec.UserID, series, rec.Score, rec.Wrong,
	).Scan(&rec.ID, &createdAt)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("failed to insert score: %w", err)
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("failed to parse score time: %w", err)
	}
	rec.CreatedAt = parsed
	rec.Series = series
	return rec, nil
}

// ListScores returns every run of the user, newest first.
func (s *Store) ListScores(ctx context.Context, userID int64) ([]model.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, user_id, series, score, wrong, created_at
		 FROM scores
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.UserID, &rec.Series, &rec.Score, &rec.Wrong, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse score time: %w", err)
		}
		rec.CreatedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return records, nil
}

// BestScore returns the highest score of the user, or 0 without runs.
func (s *Store) BestScore(ctx context.Context, userID int64) (int, error) {
	var best sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(score) FROM scores WHERE user_id = ?`, userID).Scan(&best); err != nil {
		return 0, fmt.Errorf("failed to query best score: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return int(best.Int64), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	var createdAt string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt); err != nil {
		return model.User{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user time: %w", err)
	}
	user.CreatedAt = parsed
	return user, nil
}
