package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/repository"
)

// pgExecutor abstracts over a pool and a transaction so repositories can run
// inside or outside an explicit transaction.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps pgx pool for repositories.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases resources associated with the store.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// RunGroupTx implements port.GroupTxFunc. All group mutations run inside one
// database transaction and lock the group row (Groups.GetByIDForUpdate)
// before reading membership state, so concurrent mutations on the same
// group serialize instead of interleaving their owner and capacity checks.
func (s *Store) RunGroupTx(ctx context.Context, fn func(tx port.GroupTx) error) error {
	dbTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin group tx: %w", err)
	}

	bundle := port.GroupTx{
		Groups:      NewGroupRepository(s.pool).WithTx(dbTx),
		Members:     NewMembershipRepository(s.pool).WithTx(dbTx),
		Invitations: NewInvitationRepository(s.pool).WithTx(dbTx),
		Projects:    NewProjectRepository(s.pool).WithTx(dbTx),
	}

	if err := fn(bundle); err != nil {
		if rbErr := dbTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback group tx: %w (original: %w)", rbErr, err)
		}
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit group tx: %w", err)
	}

	return nil
}

const uniqueViolationCode = "23505"

// mapConstraintErr converts unique violations to repository.ErrConflict so
// callers can branch without importing pgconn.
func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return repository.ErrConflict
	}
	return err
}
