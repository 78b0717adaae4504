package repomanager

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDSN is returned by Open for a DSN no backend recognises.
var ErrUnsupportedDSN = errors.New("unsupported database DSN")

const (
	driverPostgres = "pgx"
	driverSQLite   = "sqlite"
)

// Open selects the backend from the DSN, opens the connection pool and
// returns the matching manager. It does not connect or migrate.
//
//	postgres://... | postgresql://...   PostgreSQL (pgx)
//	sqlite://<path> | file:... | :memory:   SQLite (modernc)
func Open(dsn string) (*sql.DB, RepositoryManager, error) {
	driver, source, err := resolveDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	switch driver {
	case driverSQLite:
		// SQLite allows a single writer; serialising through one connection
		// avoids SQLITE_BUSY under concurrent registrations.
		db.SetMaxOpenConns(1)
		return db, &SQLiteRepositoryManager{}, nil
	default:
		return db, &PostgresRepositoryManager{}, nil
	}
}

func resolveDSN(dsn string) (driver, source string, err error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return driverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("%w: empty sqlite path", ErrUnsupportedDSN)
		}
		return driverSQLite, path, nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return driverSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDSN, redactDSN(dsn))
	}
}

// redactDSN keeps only the scheme so credentials never reach logs.
func redactDSN(dsn string) string {
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		return scheme + "://..."
	}
	return "..."
}
