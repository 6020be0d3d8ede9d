package storage

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"mydiary/internal/app/server/config"
	"mydiary/internal/domain/entry"
	"mydiary/internal/domain/session"
	"mydiary/internal/domain/user"
	"mydiary/internal/infrastructure/storage/postgres"
	"mydiary/internal/infrastructure/storage/sqlite"
)

// Storage собирает репозитории выбранного драйвера.
type Storage struct {
	Users    user.Repository
	Sessions session.Repository
	Entries  entry.Repository

	ping  func(ctx context.Context) error
	close func() error
}

// Open подключается к хранилищу по STORAGE_DRIVER.
func Open(ctx context.Context, cfg config.DB, log *slog.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Users:    postgres.NewUserRepository(db, log),
			Sessions: postgres.NewSessionRepository(db, log),
			Entries:  postgres.NewEntryRepository(db, log),
			ping:     db.Ping,
			close:    db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.New(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Users:    sqlite.NewUserRepository(db),
			Sessions: sqlite.NewSessionRepository(db),
			Entries:  sqlite.NewEntryRepository(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Storage) Close() error {
	return s.close()
}
