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

// InvitationRepository implements port.InvitationRepository using PostgreSQL.
// Invitations are keyed by (group_id, email); re-inviting the same address
// refreshes the stored role instead of stacking rows.
type InvitationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewInvitationRepository wires a PostgreSQL-backed invitation repository.
func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *InvitationRepository) WithTx(tx pgx.Tx) *InvitationRepository {
	if tx == nil {
		return r
	}
	return &InvitationRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Upsert inserts the invitation or refreshes role and inviter on conflict.
func (r *InvitationRepository) Upsert(ctx context.Context, invitation domain.Invitation) error {
	stmt, args, err := r.builder.Insert("collab.group_invitations").
		Columns(
			"id",
			"group_id",
			"email",
			"role",
			"invited_by",
			"created_at",
		).
		Values(
			invitation.ID,
			invitation.GroupID,
			invitation.Email,
			string(invitation.Role),
			invitation.InvitedBy,
			invitation.CreatedAt,
		).
		Suffix("ON CONFLICT (group_id, email) DO UPDATE SET role = EXCLUDED.role, invited_by = EXCLUDED.invited_by, created_at = EXCLUDED.created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert invitation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert invitation: %w", err)
	}

	return nil
}

// ListByEmail returns all pending invitations addressed to the email.
func (r *InvitationRepository) ListByEmail(ctx context.Context, email string) ([]domain.Invitation, error) {
	stmt, args, err := r.builder.
		Select("id", "group_id", "email", "role", "invited_by", "created_at").
		From("collab.group_invitations").
		Where(squirrel.Eq{"email": email}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invitations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitations by email: %w", err)
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		var (
			invitation domain.Invitation
			role       string
		)
		if err := rows.Scan(
			&invitation.ID,
			&invitation.GroupID,
			&invitation.Email,
			&role,
			&invitation.InvitedBy,
			&invitation.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invitation row: %w", err)
		}
		invitation.Role = domain.Role(role)
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitation rows: %w", err)
	}

	return invitations, nil
}

// DeleteByGroup removes every pending invitation of a group.
func (r *InvitationRepository) DeleteByGroup(ctx context.Context, groupID string) error {
	stmt, args, err := r.builder.Delete("collab.group_invitations").
		Where(squirrel.Eq{"group_id": groupID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete group invitations sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete group invitations: %w", err)
	}

	return nil
}

// Delete removes a single invitation by identifier.
func (r *InvitationRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("collab.group_invitations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete invitation sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.InvitationRepository = (*InvitationRepository)(nil)
