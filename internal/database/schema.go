package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open connects to the SQLite database at path and returns a bun handle.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}

	// SQLite allows one writer at a time. Capping the pool at a single
	// connection makes concurrent validations queue on the pool instead of
	// racing into SQLITE_BUSY on separate connections.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database %q: %w", path, err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the tables for the given models if they do not exist.
// Schema creation is idempotent and runs once at service start.
func CreateSchema(ctx context.Context, db *bun.DB, models ...interface{}) error {
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}
	return nil
}
