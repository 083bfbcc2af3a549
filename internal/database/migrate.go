package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
)

// Migrate creates or alters the tables declared in schema.go.
func Migrate(ctx context.Context, db *DB) error {
	drv := entsql.OpenDB(entDialect(db.DriverName()), db.DB.DB)

	m, err := schema.NewMigrate(drv,
		schema.WithDropIndex(true),
		schema.WithDropColumn(true),
		schema.WithForeignKeys(true),
	)
	if err != nil {
		return fmt.Errorf("init migration: %w", err)
	}

	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("run migration: %w", err)
	}
	return nil
}

func entDialect(driver string) string {
	if driver == DriverSQLite {
		return dialect.SQLite
	}
	return dialect.Postgres
}
