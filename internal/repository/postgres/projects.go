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

// ProjectRepository implements port.ProjectRepository using PostgreSQL. The
// projects table is owned by the project service; this repository reads it
// and clears team references when a group is deleted.
type ProjectRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProjectRepository wires a PostgreSQL-backed project repository.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ProjectRepository) WithTx(tx pgx.Tx) *ProjectRepository {
	if tx == nil {
		return r
	}
	return &ProjectRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// GetByID retrieves a project by identifier.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "owner_id", "team_id").
		From("projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select project sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.OwnerID,
		&project.TeamID,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	return &project, nil
}

// DetachTeam clears the team reference on every project pointing at the
// group and returns how many were detached.
func (r *ProjectRepository) DetachTeam(ctx context.Context, teamID string) (int, error) {
	stmt, args, err := r.builder.Update("projects").
		Set("team_id", nil).
		Where(squirrel.Eq{"team_id": teamID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build detach team sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("detach team from projects: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

var _ port.ProjectRepository = (*ProjectRepository)(nil)
