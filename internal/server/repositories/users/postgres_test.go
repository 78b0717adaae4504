package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskauth/internal/common"
	"github.com/dmitrijs2005/taskauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgSelectQuery = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	pgInsertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgresInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(pgInsertQuery).
		WithArgs("3f1c", "alice@example.com", "$2a$04$hash", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{ID: "3f1c", Email: "alice@example.com", PasswordHash: "$2a$04$hash", CreatedAt: created}
	if err := repo.Insert(context.Background(), u); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPostgresInsert_EmailUniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgInsertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Insert(context.Background(), &models.User{ID: "x", Email: "dup@example.com", PasswordHash: "h"})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
}

func TestPostgresInsert_PrimaryKeyViolationIsNotEmailTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgInsertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

	err := repo.Insert(context.Background(), &models.User{ID: "x", Email: "a@example.com", PasswordHash: "h"})
	if err == nil || errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("expected plain db error, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected wrapped *pgconn.PgError, got %T", err)
	}
}

func TestPostgresInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgInsertQuery).WillReturnError(errors.New("db down"))

	err := repo.Insert(context.Background(), &models.User{ID: "x", Email: "a@example.com", PasswordHash: "h"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
		AddRow("u-1", "alice@example.com", "$2a$04$hash", created)
	mock.ExpectQuery(pgSelectQuery).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	got, found, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if !found {
		t.Fatal("expected found")
	}
	if got.ID != "u-1" || got.Email != "alice@example.com" || got.PasswordHash != "$2a$04$hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.CreatedAt.Location() != time.UTC || !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at must be normalized to UTC, got %v", got.CreatedAt)
	}
}

func TestPostgresFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQuery).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	got, found, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if found || got != nil {
		t.Fatalf("expected not found, got %+v", got)
	}
}

func TestPostgresFindByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQuery).
		WithArgs("alice@example.com").
		WillReturnError(errors.New("db err"))

	_, _, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
