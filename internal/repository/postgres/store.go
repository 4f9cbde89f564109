package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres для goose
	"github.com/pressly/goose/v3"
	"github.com/xela07ax/librarium/internal/infra"
	"github.com/xela07ax/librarium/internal/repository/postgres/migrations"
)

// Store держит пул соединений, от него отпочковываются репозитории.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore открывает пул и дожидается доступности базы.
// Старт контейнеров недетерминирован, поэтому Ping с ретраями.
func NewStore(ctx context.Context, cfg infra.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid database url: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(5),
	)
	if err := r.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: database unreachable: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Migrate прогоняет goose-миграции из встроенной FS.
// goose работает поверх database/sql, поэтому открываем отдельное
// короткоживущее соединение через pgx stdlib.
func (s *Store) Migrate(ctx context.Context, url string) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("postgres: migration connection failed: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("postgres: migrations failed: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы (healthcheck).
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close освобождает пул при остановке сервиса.
func (s *Store) Close() {
	s.pool.Close()
}
