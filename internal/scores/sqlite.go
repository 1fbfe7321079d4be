// internal/scores/sqlite.go
//
// SQLite-backed Store (the default durable backend).
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations from sql/sqlite (idempotent, recorded in _migrations).
//   - Ranked leaderboard reads per partition.

package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLite stores records in a single scores table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at path and migrates it.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// openDB ensures the parent directory exists, then opens the file with a busy
// timeout and WAL journaling.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies each embedded sql/sqlite file once, inside its own transaction.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := migrationFiles("sqlite")
	if err != nil {
		return fmt.Errorf("walk sql dir: %w", err)
	}

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func (s *SQLite) Append(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO scores
            (id, game, partition_key, player_name, elapsed_seconds, difficulty, score, category, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Game, r.Partition().Key, r.PlayerName,
		r.ElapsedSeconds, r.Difficulty, r.Score, r.Category, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// List orders puzzle by elapsed_seconds ASC and trivia by score DESC, then
// created_at ASC, then insertion order.
func (s *SQLite) List(ctx context.Context, f Filter) ([]Record, error) {
	order := `score DESC`
	if f.Game == GamePuzzle {
		order = `elapsed_seconds ASC`
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, game, player_name, elapsed_seconds, difficulty, score, category, created_at
        FROM scores
        WHERE game=? AND partition_key=?
        ORDER BY `+order+`, created_at ASC, rowid ASC
        LIMIT ?`, f.Game, f.Key, f.EffectiveLimit(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, f.EffectiveLimit())
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Remove(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
        DELETE FROM scores WHERE id=?
        RETURNING id, game, player_name, elapsed_seconds, difficulty, score, category, created_at`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (s *SQLite) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		r  Record
		ns int64
	)
	if err := row.Scan(&r.ID, &r.Game, &r.PlayerName, &r.ElapsedSeconds,
		&r.Difficulty, &r.Score, &r.Category, &ns); err != nil {
		return Record{}, err
	}
	r.CreatedAt = time.Unix(0, ns).UTC()
	return r, nil
}
