package postgres

import (
	"context"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/repository"
)

// PrincipalDirectory implements port.PrincipalDirectory against the platform
// users table. Accounts are created by the IAM service; this is lookup only.
type PrincipalDirectory struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

// NewPrincipalDirectory wires a PostgreSQL-backed principal directory.
func NewPrincipalDirectory(pool *pgxpool.Pool) *PrincipalDirectory {
	return &PrincipalDirectory{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// LookupByEmail returns the principal ID for the email, or
// repository.ErrNotFound when no account exists yet.
func (d *PrincipalDirectory) LookupByEmail(ctx context.Context, email string) (string, error) {
	stmt, args, err := d.builder.
		Select("id").
		From("users").
		Where(squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build lookup principal sql: %w", err)
	}

	var id string
	if err := d.pool.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("lookup principal by email: %w", err)
	}

	return id, nil
}

var _ port.PrincipalDirectory = (*PrincipalDirectory)(nil)
