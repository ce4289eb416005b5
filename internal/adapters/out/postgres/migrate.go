package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"handoff/internal/adapters/out/postgres/carrierrepo"
	"handoff/internal/adapters/out/postgres/missionrepo"
	"handoff/internal/adapters/out/postgres/outboxrepo"
	"handoff/internal/adapters/out/postgres/parcelrepo"

	// lib/pq backs the database/sql handle goose migrates through.
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate runs a goose command ("up", "down", "status", ...) against the
// postgres database at dsn using the embedded migrations.
func Migrate(ctx context.Context, dsn, command string, args ...string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err = goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err = goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// AutoMigrate creates the schema from the row types. It is used for sqlite,
// where the goose SQL does not apply.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&parcelrepo.ParcelDTO{},
		&missionrepo.MissionDTO{},
		&carrierrepo.CarrierDTO{},
		&outboxrepo.MessageDTO{},
	)
}
