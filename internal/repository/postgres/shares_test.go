package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/repository"
)

func newShareRepoWithMock(t *testing.T) (*ShareRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	repo := &ShareRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func TestShareRepository_Upsert(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	now := time.Now().UTC()
	share := domain.Share{
		ID:          "share-1",
		ProjectID:   "project-1",
		GrantedBy:   "owner-1",
		GrantedTo:   "user-2",
		AccessLevel: domain.AccessLevelEdit,
		Settings:    domain.DefaultShareSettings(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO collab\.shares .*ON CONFLICT \(project_id, granted_to\) DO UPDATE`).
		WithArgs(
			share.ID,
			share.ProjectID,
			share.GrantedBy,
			share.GrantedTo,
			"EDIT",
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			share.CreatedAt,
			share.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), share); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShareRepository_GetByID(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	now := time.Now().UTC()
	settings := []byte(`{"allow_download":true,"allow_comments":true,"allow_fork":false,"require_approval":false}`)

	rows := pgxmock.NewRows([]string{
		"id", "project_id", "granted_by", "granted_to", "access_level", "settings", "expires_at", "created_at", "updated_at",
	}).AddRow(
		"share-1", "project-1", "owner-1", "user-2", "ADMIN", settings, nil, now, now,
	)

	mock.ExpectQuery(`SELECT .* FROM collab\.shares`).WithArgs("share-1").WillReturnRows(rows)

	share, err := repo.GetByID(context.Background(), "share-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if share.AccessLevel != domain.AccessLevelAdmin {
		t.Fatalf("expected ADMIN, got %s", share.AccessLevel)
	}
	if !share.Settings.AllowDownload || !share.Settings.AllowComments {
		t.Fatalf("settings not decoded: %+v", share.Settings)
	}
	if share.ExpiresAt != nil {
		t.Fatal("expected no expiry")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShareRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM collab\.shares`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}
}

func TestShareRepository_GetByProjectAndTarget(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	now := time.Now().UTC()
	expiry := now.Add(time.Hour)

	rows := pgxmock.NewRows([]string{
		"id", "project_id", "granted_by", "granted_to", "access_level", "settings", "expires_at", "created_at", "updated_at",
	}).AddRow(
		"share-1", "project-1", "owner-1", "user-2", "VIEW", []byte(`{}`), &expiry, now, now,
	)

	// squirrel orders map-based predicates by key, so granted_to binds first.
	mock.ExpectQuery(`SELECT .* FROM collab\.shares`).WithArgs("user-2", "project-1").WillReturnRows(rows)

	share, err := repo.GetByProjectAndTarget(context.Background(), "project-1", "user-2")
	if err != nil {
		t.Fatalf("GetByProjectAndTarget returned error: %v", err)
	}
	if share.ExpiresAt == nil || !share.ExpiresAt.Equal(expiry) {
		t.Fatal("expiry must round-trip")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShareRepository_ListByTarget(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "project_id", "granted_by", "granted_to", "access_level", "settings", "expires_at", "created_at", "updated_at",
		"name", "owner_id", "username",
	}).AddRow(
		"share-1", "project-1", "owner-1", "user-2", "EDIT", []byte(`{"allow_comments":true}`), nil, now, now,
		"billing api", "owner-1", "casey",
	)

	mock.ExpectQuery(`SELECT .* FROM collab\.shares s JOIN projects p ON p\.id = s\.project_id JOIN users u ON u\.id = p\.owner_id`).
		WithArgs(now, "user-2").
		WillReturnRows(rows)

	shared, err := repo.ListByTarget(context.Background(), "user-2", now)
	if err != nil {
		t.Fatalf("ListByTarget returned error: %v", err)
	}
	if len(shared) != 1 {
		t.Fatalf("expected one row, got %d", len(shared))
	}
	if shared[0].ProjectName != "billing api" || shared[0].OwnerName != "casey" {
		t.Fatalf("display data not populated: %+v", shared[0])
	}
	if shared[0].Share.AccessLevel != domain.AccessLevelEdit {
		t.Fatalf("expected EDIT, got %s", shared[0].Share.AccessLevel)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShareRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM collab\.shares`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}
}

func TestShareRepository_UpdateSettings(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	updatedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE collab\.shares SET`).
		WithArgs(pgxmock.AnyArg(), updatedAt, "share-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateSettings(context.Background(), "share-1", domain.DefaultShareSettings(), updatedAt)
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShareRepository_UpdateSettings_NotFound(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	mock.ExpectExec(`UPDATE collab\.shares SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateSettings(context.Background(), "missing", domain.DefaultShareSettings(), time.Now().UTC())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}
}

func TestShareRepository_DeleteExpiredBefore(t *testing.T) {
	repo, mock := newShareRepoWithMock(t)
	defer mock.Close()

	cutoff := time.Now().UTC().Add(-720 * time.Hour)

	mock.ExpectExec(`DELETE FROM collab\.shares WHERE expires_at <`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	purged, err := repo.DeleteExpiredBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteExpiredBefore returned error: %v", err)
	}
	if purged != 3 {
		t.Fatalf("expected 3 purged rows, got %d", purged)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
