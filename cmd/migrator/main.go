package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/sprintsense/balance-service/internal/config"
)

type migrationCfg struct {
	connStr         string
	migrationsPath  string
	migrationsTable string
}

func main() {
	migrationsPath := flag.String("path", os.Getenv("MIGRATIONS_PATH"), "directory with migration files")
	migrationsTable := flag.String("table", envOr("MIGRATIONS_TABLE", "schema_migrations"), "migrations bookkeeping table")
	flag.Parse()

	cfg, err := load(*migrationsPath, *migrationsTable)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := migrate.New(
		"file://"+cfg.migrationsPath,
		fmt.Sprintf("%s?sslmode=disable&x-migrations-table=%s", cfg.connStr, cfg.migrationsTable),
	)
	if err != nil {
		log.Fatalf("can't create new migration: %v", err)
	}
	defer m.Close()

	switch cmd := flag.Arg(0); cmd {
	case "down":
		if err := down(m); err != nil {
			log.Fatal(err)
		}

		fmt.Println("migrations rolled back successfully")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("can't read migration version: %v", err)
		}

		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
	case "", "up":
		if err := up(m); err != nil {
			log.Fatal(err)
		}

		fmt.Println("migrations applied successfully")
	default:
		log.Fatalf("unknown command %q, expected up, down or version", cmd)
	}
}

func load(migrationsPath, migrationsTable string) (*migrationCfg, error) {
	if migrationsPath == "" {
		return nil, errors.New("MIGRATIONS_PATH is not set")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	return &migrationCfg{
		connStr:         cfg.Postgres.DSN(),
		migrationsPath:  migrationsPath,
		migrationsTable: migrationsTable,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no new migrations to apply")
			return nil
		}

		return fmt.Errorf("can't do migrations: %w", err)
	}

	return nil
}

func down(m *migrate.Migrate) error {
	if err := m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return errors.New("no migrations to roll back")
		}

		return fmt.Errorf("can't down migrations: %w", err)
	}

	return nil
}
