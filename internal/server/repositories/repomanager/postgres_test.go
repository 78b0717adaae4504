package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func stubGooseUp(t *testing.T, fn func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error) {
	t.Helper()
	orig := gooseUp
	gooseUp = fn
	t.Cleanup(func() { gooseUp = orig })
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	if _, ok := (&PostgresRepositoryManager{}).Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Postgres manager must vend *users.PostgresRepository")
	}
	if _, ok := (&SQLiteRepositoryManager{}).Users(db).(*users.SQLiteRepository); !ok {
		t.Fatal("SQLite manager must vend *users.SQLiteRepository")
	}
}

func TestRunMigrations_UsesDialectAndEmbeddedFiles(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	tests := []struct {
		name    string
		manager RepositoryManager
		dialect goose.Dialect
	}{
		{name: "postgres", manager: &PostgresRepositoryManager{}, dialect: goose.DialectPostgres},
		{name: "sqlite", manager: &SQLiteRepositoryManager{}, dialect: goose.DialectSQLite3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubGooseUp(t, func(ctx context.Context, dialect goose.Dialect, _ *sql.DB, fsys fs.FS) error {
				if dialect != tt.dialect {
					return errors.New("unexpected dialect " + string(dialect))
				}
				if _, err := fs.Stat(fsys, "00001_create_users.sql"); err != nil {
					return err
				}
				return nil
			})

			if err := tt.manager.RunMigrations(context.Background(), db); err != nil {
				t.Fatalf("RunMigrations error: %v", err)
			}
		})
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	stubGooseUp(t, func(context.Context, goose.Dialect, *sql.DB, fs.FS) error {
		return errors.New("boom")
	})

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
