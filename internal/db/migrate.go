package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate aplica las migraciones pendientes embebidas en el binario.
func Migrate(databaseURL string, logger *zap.Logger) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(databaseURL))
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("migration source close", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("migration db close", zap.Error(dbErr))
		}
	}()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: database dirty at version %d", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations up to date", zap.Uint("version", version))
			return nil
		}
		return fmt.Errorf("migration up: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("migrations applied", zap.Uint("from", version), zap.Uint("to", newVersion))
	return nil
}

// NormalizeDSN limpia el DSN tal como llega del entorno.
func NormalizeDSN(dsn string) string {
	return strings.TrimSpace(dsn)
}

// pgx5URL traduce el DSN al esquema que espera el driver pgx/v5 de golang-migrate.
func pgx5URL(dsn string) string {
	dsn = NormalizeDSN(dsn)
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
