package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskauth/internal/dbx"
	"github.com/dmitrijs2005/taskauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX and owns the schema
// migrations for its dialect.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
