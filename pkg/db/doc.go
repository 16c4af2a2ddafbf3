// Package db opens pgx connection pools and applies goose migrations for
// the PostgreSQL session store.
//
// Settings come from [Config], populated from DATABASE_* environment variables:
//
//	pool := db.MustOpen(ctx, cfg.Database)
//	if err := db.Migrate(ctx, pool, session.Migrations, cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//	store := session.NewPostgresStore(pool, log)
//
// Migrate reads files from the "migrations" directory of the given filesystem,
// matching the layout of the session package's embedded migrations.
package db
