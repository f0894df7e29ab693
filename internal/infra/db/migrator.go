package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate применяет все недостающие миграции из каталога path.
func Migrate(ctx context.Context, pool *pgxpool.Pool, path string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("диалект goose: %w", err)
	}
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, path); err != nil {
		return fmt.Errorf("применение миграций: %w", err)
	}
	return nil
}
