// internal/scores/postgres.go
//
// PostgreSQL-backed Store for deployments that run several server processes
// against one database.

package scores

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Postgres stores records in a scores table through a pgx pool.
type Postgres struct {
	db *pgxpool.Pool
}

// OpenPostgres connects, pings and migrates.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Msg("postgres score store connected")
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := migrationFiles("postgres")
	if err != nil {
		return fmt.Errorf("walk sql dir: %w", err)
	}
	for _, f := range files {
		b, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		tag, err := p.db.Exec(ctx, `INSERT INTO _migrations(name) VALUES ($1) ON CONFLICT DO NOTHING`, f)
		if err != nil {
			return fmt.Errorf("record %s: %w", f, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		if _, err := p.db.Exec(ctx, string(b)); err != nil {
			_, _ = p.db.Exec(ctx, `DELETE FROM _migrations WHERE name=$1`, f)
			return fmt.Errorf("apply %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func (p *Postgres) Append(ctx context.Context, r Record) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO scores
			(id, game, partition_key, player_name, elapsed_seconds, difficulty, score, category, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, string(r.Game), r.Partition().Key, r.PlayerName,
		r.ElapsedSeconds, r.Difficulty, r.Score, r.Category, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, f Filter) ([]Record, error) {
	order := `score DESC`
	if f.Game == GamePuzzle {
		order = `elapsed_seconds ASC`
	}
	rows, err := p.db.Query(ctx,
		`SELECT id, game, player_name, elapsed_seconds, difficulty, score, category, created_at
		 FROM scores
		 WHERE game = $1 AND partition_key = $2
		 ORDER BY `+order+`, created_at ASC, seq ASC
		 LIMIT $3`,
		string(f.Game), f.Key, f.EffectiveLimit(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, f.EffectiveLimit())
	for rows.Next() {
		r, err := scanPgRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) Remove(ctx context.Context, id string) (Record, error) {
	row := p.db.QueryRow(ctx,
		`DELETE FROM scores WHERE id = $1
		 RETURNING id, game, player_name, elapsed_seconds, difficulty, score, category, created_at`, id)
	r, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

func scanPgRecord(row pgx.Row) (Record, error) {
	var (
		r    Record
		game string
	)
	if err := row.Scan(&r.ID, &game, &r.PlayerName, &r.ElapsedSeconds,
		&r.Difficulty, &r.Score, &r.Category, &r.CreatedAt); err != nil {
		return Record{}, err
	}
	r.Game = Game(game)
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}
