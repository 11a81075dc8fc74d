package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/repository"
)

// GroupRepository implements port.GroupRepository using PostgreSQL.
type GroupRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGroupRepository wires a PostgreSQL-backed group repository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *GroupRepository) WithTx(tx pgx.Tx) *GroupRepository {
	if tx == nil {
		return r
	}
	return &GroupRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new group row.
func (r *GroupRepository) Create(ctx context.Context, group domain.Group) error {
	stmt, args, err := r.builder.Insert("collab.groups").
		Columns(
			"id",
			"name",
			"description",
			"max_members",
			"is_public",
			"created_by",
			"created_at",
		).
		Values(
			group.ID,
			group.Name,
			group.Description,
			group.MaxMembers,
			group.IsPublic,
			group.CreatedBy,
			group.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert group sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert group: %w", mapConstraintErr(err))
	}

	return nil
}

// GetByID retrieves a group by identifier.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves the group with SELECT ... FOR UPDATE. The row
// lock serializes concurrent mutations on the same group for the rest of
// the transaction.
func (r *GroupRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Group, error) {
	return r.getByID(ctx, id, true)
}

func (r *GroupRepository) getByID(ctx context.Context, id string, forUpdate bool) (*domain.Group, error) {
	query := r.builder.
		Select(
			"id",
			"name",
			"description",
			"max_members",
			"is_public",
			"created_by",
			"created_at",
		).
		From("collab.groups").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select group sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	group, err := scanGroup(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}

	return group, nil
}

// ListByUser returns every group the user currently belongs to, newest first.
func (r *GroupRepository) ListByUser(ctx context.Context, userID string) ([]domain.Group, error) {
	stmt, args, err := r.builder.
		Select(
			"g.id",
			"g.name",
			"g.description",
			"g.max_members",
			"g.is_public",
			"g.created_by",
			"g.created_at",
		).
		From("collab.groups g").
		Join("collab.group_members m ON m.group_id = g.id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("g.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list groups sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		groups = append(groups, *group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group rows: %w", err)
	}

	return groups, nil
}

// Delete removes a group row.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("collab.groups").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete group sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var (
		group       domain.Group
		description sql.NullString
	)

	if err := row.Scan(
		&group.ID,
		&group.Name,
		&description,
		&group.MaxMembers,
		&group.IsPublic,
		&group.CreatedBy,
		&group.CreatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		val := description.String
		group.Description = &val
	}

	return &group, nil
}

var _ port.GroupRepository = (*GroupRepository)(nil)
