package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/repository"
)

// ShareRepository implements port.ShareRepository using PostgreSQL. Rows are
// unique per (project_id, granted_to); settings live in a jsonb column.
type ShareRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewShareRepository wires a PostgreSQL-backed share repository.
func NewShareRepository(pool *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ShareRepository) WithTx(tx pgx.Tx) *ShareRepository {
	if tx == nil {
		return r
	}
	return &ShareRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Upsert inserts the share or, when the (project_id, granted_to) pair already
// exists, replaces level, settings, and expiry in place.
func (r *ShareRepository) Upsert(ctx context.Context, share domain.Share) error {
	settings, err := json.Marshal(share.Settings)
	if err != nil {
		return fmt.Errorf("marshal share settings: %w", err)
	}

	stmt, args, err := r.builder.Insert("collab.shares").
		Columns(
			"id",
			"project_id",
			"granted_by",
			"granted_to",
			"access_level",
			"settings",
			"expires_at",
			"created_at",
			"updated_at",
		).
		Values(
			share.ID,
			share.ProjectID,
			share.GrantedBy,
			share.GrantedTo,
			share.AccessLevel.String(),
			settings,
			share.ExpiresAt,
			share.CreatedAt,
			share.UpdatedAt,
		).
		Suffix("ON CONFLICT (project_id, granted_to) DO UPDATE SET access_level = EXCLUDED.access_level, settings = EXCLUDED.settings, expires_at = EXCLUDED.expires_at, granted_by = EXCLUDED.granted_by, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert share sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert share: %w", err)
	}

	return nil
}

// GetByID retrieves a share by identifier.
func (r *ShareRepository) GetByID(ctx context.Context, id string) (*domain.Share, error) {
	stmt, args, err := r.shareSelect().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select share sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// GetByProjectAndTarget retrieves the share for (projectID, userID) whether
// live or expired; callers decide what expiry means for them.
func (r *ShareRepository) GetByProjectAndTarget(ctx context.Context, projectID, userID string) (*domain.Share, error) {
	stmt, args, err := r.shareSelect().
		Where(squirrel.Eq{"project_id": projectID, "granted_to": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select share by target sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// ListByTarget returns shares granted to the principal that are live at the
// given instant, joined with project and owner display data.
func (r *ShareRepository) ListByTarget(ctx context.Context, userID string, now time.Time) ([]domain.SharedProject, error) {
	stmt, args, err := r.sharedProjectSelect(now).
		Where(squirrel.Eq{"s.granted_to": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list shares by target sql: %w", err)
	}

	return r.scanSharedProjects(ctx, stmt, args)
}

// ListByGranter returns live shares the principal has granted to others.
func (r *ShareRepository) ListByGranter(ctx context.Context, userID string, now time.Time) ([]domain.SharedProject, error) {
	stmt, args, err := r.sharedProjectSelect(now).
		Where(squirrel.Eq{"s.granted_by": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list shares by granter sql: %w", err)
	}

	return r.scanSharedProjects(ctx, stmt, args)
}

// UpdateSettings replaces the settings bundle on an existing share and
// stamps the caller-supplied update instant.
func (r *ShareRepository) UpdateSettings(ctx context.Context, id string, settings domain.ShareSettings, updatedAt time.Time) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal share settings: %w", err)
	}

	stmt, args, err := r.builder.Update("collab.shares").
		Set("settings", payload).
		Set("updated_at", updatedAt.UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update share settings sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update share settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a share row.
func (r *ShareRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("collab.shares").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete share sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteExpiredBefore removes shares whose expiry predates the cutoff and
// returns the number of rows purged.
func (r *ShareRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	stmt, args, err := r.builder.Delete("collab.shares").
		Where(squirrel.Lt{"expires_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge expired shares sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("purge expired shares: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *ShareRepository) shareSelect() squirrel.SelectBuilder {
	return r.builder.
		Select(
			"id",
			"project_id",
			"granted_by",
			"granted_to",
			"access_level",
			"settings",
			"expires_at",
			"created_at",
			"updated_at",
		).
		From("collab.shares")
}

func (r *ShareRepository) sharedProjectSelect(now time.Time) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"s.id",
			"s.project_id",
			"s.granted_by",
			"s.granted_to",
			"s.access_level",
			"s.settings",
			"s.expires_at",
			"s.created_at",
			"s.updated_at",
			"p.name",
			"p.owner_id",
			"u.username",
		).
		From("collab.shares s").
		Join("projects p ON p.id = s.project_id").
		Join("users u ON u.id = p.owner_id").
		Where(squirrel.Or{
			squirrel.Eq{"s.expires_at": nil},
			squirrel.Gt{"s.expires_at": now},
		}).
		OrderBy("s.updated_at DESC")
}

func (r *ShareRepository) scanOne(ctx context.Context, stmt string, args []any) (*domain.Share, error) {
	row := r.exec.QueryRow(ctx, stmt, args...)

	share, err := scanShare(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan share: %w", err)
	}

	return share, nil
}

func (r *ShareRepository) scanSharedProjects(ctx context.Context, stmt string, args []any) ([]domain.SharedProject, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var shared []domain.SharedProject
	for rows.Next() {
		var (
			item     domain.SharedProject
			level    string
			settings []byte
		)
		if err := rows.Scan(
			&item.Share.ID,
			&item.Share.ProjectID,
			&item.Share.GrantedBy,
			&item.Share.GrantedTo,
			&level,
			&settings,
			&item.Share.ExpiresAt,
			&item.Share.CreatedAt,
			&item.Share.UpdatedAt,
			&item.ProjectName,
			&item.OwnerID,
			&item.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("scan shared project row: %w", err)
		}

		parsed, err := domain.ParseAccessLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse stored access level: %w", err)
		}
		item.Share.AccessLevel = parsed

		if len(settings) > 0 {
			if err := json.Unmarshal(settings, &item.Share.Settings); err != nil {
				return nil, fmt.Errorf("unmarshal share settings: %w", err)
			}
		}

		shared = append(shared, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shared project rows: %w", err)
	}

	return shared, nil
}

func scanShare(row pgx.Row) (*domain.Share, error) {
	var (
		share    domain.Share
		level    string
		settings []byte
	)

	if err := row.Scan(
		&share.ID,
		&share.ProjectID,
		&share.GrantedBy,
		&share.GrantedTo,
		&level,
		&settings,
		&share.ExpiresAt,
		&share.CreatedAt,
		&share.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseAccessLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse stored access level: %w", err)
	}
	share.AccessLevel = parsed

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &share.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal share settings: %w", err)
		}
	}

	return &share, nil
}

var _ port.ShareRepository = (*ShareRepository)(nil)
