// Package store persists users, friend requests, friendships, scores and
// device tokens. Postgres is the production store; Memory enforces the same
// constraints in process for tests and local runs.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// pgError returns the SQLSTATE code and constraint name of a Postgres error.
func pgError(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// likePattern wraps q in % wildcards after escaping LIKE metacharacters.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// orderedPair returns a and b with the smaller id first, the canonical
// orientation of a friendships row.
func orderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
