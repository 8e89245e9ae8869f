// Package postgres implements GameRecordStore on top of a pgx connection
// pool. The schema is managed with embedded golang-migrate migrations and
// applied automatically on Connect.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jacdylngab/quizwire/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pgUniqueViolation is the SQLSTATE code for unique constraint violations.
const pgUniqueViolation = "23505"

// Store is a Postgres-backed implementation of store.GameRecordStore.
type Store struct {
	pool *pgxpool.Pool
}

// Connect parses the DSN, opens a pool, verifies connectivity, and applies
// any pending migrations.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := runMigrations(dsn); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func runMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	// migrate selects its database driver by URL scheme.
	url := dsn
	if !strings.HasPrefix(url, "postgres://") && !strings.HasPrefix(url, "postgresql://") {
		url = "postgres://" + url
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database migration: %w", err)
	}
	return nil
}

func (s *Store) CreateGame(ctx context.Context, code string) error {
	q := `INSERT INTO games (code) VALUES ($1)`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, code)
		return err
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return store.ErrCodeExists
	}
	return err
}

func (s *Store) GameExists(ctx context.Context, code string) (bool, error) {
	q := `SELECT 1 FROM games WHERE code = $1 LIMIT 1`
	var tmp int
	err := s.pool.QueryRow(ctx, q, code).Scan(&tmp)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) DeleteGame(ctx context.Context, code string) error {
	q := `DELETE FROM games WHERE code = $1`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, code)
		return err
	})
}

func (s *Store) Questions(ctx context.Context) ([]store.Question, error) {
	q := `SELECT prompt, options, answer FROM questions ORDER BY id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []store.Question
	for rows.Next() {
		var question store.Question
		if err := rows.Scan(&question.Prompt, &question.Options, &question.Answer); err != nil {
			return nil, err
		}
		qs = append(qs, question)
	}
	return qs, rows.Err()
}

func (s *Store) SeedQuestions(ctx context.Context, qs []store.Question) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		q := `INSERT INTO questions (prompt, options, answer) VALUES ($1, $2, $3)`
		for _, question := range qs {
			if _, err := tx.Exec(ctx, q, question.Prompt, question.Options, question.Answer); err != nil {
				return err
			}
		}
		return nil
	})
}
