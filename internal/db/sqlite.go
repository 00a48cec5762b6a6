package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"nutrivision/internal/models"
)

// Record keys. Each one holds a single JSON document.
const (
	ProfileKey = "nutrivision-user-profile"
	MealsKey   = "nutrivision-meals"
)

// ErrCorruptRecord is returned when a stored document cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt record")

// SQLiteDB keeps the profile and the meal log in a local key/value table.
type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writes.
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteDB{db: conn}, nil
}

func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadProfile returns nil without error when no profile was saved.
func (s *SQLiteDB) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	raw, ok, err := s.get(ctx, ProfileKey)
	if err != nil || !ok {
		return nil, err
	}

	var p models.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, ProfileKey, err)
	}
	np, err := p.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, ProfileKey, err)
	}
	return &np, nil
}

// SaveProfile replaces the stored profile. A nil profile removes it.
func (s *SQLiteDB) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if p == nil {
		return s.delete(ctx, ProfileKey)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return s.put(ctx, ProfileKey, string(raw))
}

// LoadMeals returns an empty log when nothing was saved.
func (s *SQLiteDB) LoadMeals(ctx context.Context) ([]models.Meal, error) {
	raw, ok, err := s.get(ctx, MealsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Meal{}, nil
	}

	var meals []models.Meal
	if err := json.Unmarshal([]byte(raw), &meals); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, MealsKey, err)
	}
	if meals == nil {
		meals = []models.Meal{}
	}
	return meals, nil
}

// SaveMeals writes the whole log in one statement.
func (s *SQLiteDB) SaveMeals(ctx context.Context, meals []models.Meal) error {
	if meals == nil {
		meals = []models.Meal{}
	}
	raw, err := json.Marshal(meals)
	if err != nil {
		return fmt.Errorf("failed to encode meals: %w", err)
	}
	return s.put(ctx, MealsKey, string(raw))
}

func (s *SQLiteDB) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteDB) put(ctx context.Context, key, value string) error {
	query := `
        INSERT INTO records (key, value, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (key) DO UPDATE
        SET value = excluded.value, updated_at = excluded.updated_at
    `
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteDB) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
