package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/repository"
)

// MembershipRepository implements port.MembershipRepository using PostgreSQL.
// Rows are unique per (group_id, user_id).
type MembershipRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMembershipRepository wires a PostgreSQL-backed membership repository.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *MembershipRepository) WithTx(tx pgx.Tx) *MembershipRepository {
	if tx == nil {
		return r
	}
	return &MembershipRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a membership row. A duplicate (group_id, user_id) surfaces
// as repository.ErrConflict.
func (r *MembershipRepository) Create(ctx context.Context, membership domain.Membership) error {
	stmt, args, err := r.builder.Insert("collab.group_members").
		Columns(
			"id",
			"group_id",
			"user_id",
			"role",
			"joined_at",
		).
		Values(
			membership.ID,
			membership.GroupID,
			membership.UserID,
			string(membership.Role),
			membership.JoinedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert membership sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert membership: %w", mapConstraintErr(err))
	}

	return nil
}

// Get retrieves the membership for (groupID, userID).
func (r *MembershipRepository) Get(ctx context.Context, groupID, userID string) (*domain.Membership, error) {
	stmt, args, err := r.builder.
		Select("id", "group_id", "user_id", "role", "joined_at").
		From("collab.group_members").
		Where(squirrel.Eq{"group_id": groupID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select membership sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		membership domain.Membership
		role       string
	)
	if err := row.Scan(
		&membership.ID,
		&membership.GroupID,
		&membership.UserID,
		&role,
		&membership.JoinedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan membership: %w", err)
	}
	membership.Role = domain.Role(role)

	return &membership, nil
}

// ListByGroup returns all memberships of a group ordered by join time.
func (r *MembershipRepository) ListByGroup(ctx context.Context, groupID string) ([]domain.Membership, error) {
	stmt, args, err := r.builder.
		Select("id", "group_id", "user_id", "role", "joined_at").
		From("collab.group_members").
		Where(squirrel.Eq{"group_id": groupID}).
		OrderBy("joined_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list memberships sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		var (
			membership domain.Membership
			role       string
		)
		if err := rows.Scan(
			&membership.ID,
			&membership.GroupID,
			&membership.UserID,
			&role,
			&membership.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("scan membership row: %w", err)
		}
		membership.Role = domain.Role(role)
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate membership rows: %w", err)
	}

	return memberships, nil
}

// UpdateRole changes the role on an existing membership.
func (r *MembershipRepository) UpdateRole(ctx context.Context, groupID, userID string, role domain.Role) error {
	stmt, args, err := r.builder.Update("collab.group_members").
		Set("role", string(role)).
		Where(squirrel.Eq{"group_id": groupID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update membership role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a single membership.
func (r *MembershipRepository) Delete(ctx context.Context, groupID, userID string) error {
	stmt, args, err := r.builder.Delete("collab.group_members").
		Where(squirrel.Eq{"group_id": groupID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete membership sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByGroup removes every membership of a group and reports the count.
func (r *MembershipRepository) DeleteByGroup(ctx context.Context, groupID string) (int, error) {
	stmt, args, err := r.builder.Delete("collab.group_members").
		Where(squirrel.Eq{"group_id": groupID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete group memberships sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete group memberships: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

var _ port.MembershipRepository = (*MembershipRepository)(nil)
