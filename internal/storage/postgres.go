package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/postgres.sql
var postgresSchema string

// PostgresStore inserts emails into Postgres tables with a UNIQUE email column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, checks connectivity and creates missing tables.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("storage: postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: apply postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Name implements EmailStore.
func (s *PostgresStore) Name() string { return "postgres" }

// Ping checks the pool can reach the database.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements EmailStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Insert implements EmailStore.
func (s *PostgresStore) Insert(ctx context.Context, table Table, email string) error {
	if err := checkInsert(ctx, table, email); err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s (email) VALUES ($1)", pgx.Identifier{string(table)}.Sanitize())
	if _, err := s.pool.Exec(ctx, query, email); err != nil {
		if isPGConflict(err) {
			return conflictError(table)
		}
		return fmt.Errorf("storage: postgres insert into %s: %w", table, err)
	}
	return nil
}

// isPGConflict returns true if the error is the result of unique constraint conflict.
func isPGConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
