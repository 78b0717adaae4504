// Package migrations embeds the goose SQL migrations, one directory per
// supported dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the migrations for the pgx dialect, rooted at the
// migration files.
func Postgres() fs.FS {
	return mustSub("postgres")
}

// SQLite returns the migrations for the sqlite dialect.
func SQLite() fs.FS {
	return mustSub("sqlite")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
