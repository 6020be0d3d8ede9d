package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"mydiary/internal/app/server/config"
	"mydiary/internal/domain/entry"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.DB{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "diary.db"),
	}, slog.Default())
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	require.NoError(t, s.Ping(ctx))

	uid, err := s.Users.Create(ctx, "alice", "hash")
	require.NoError(t, err)

	id, err := s.Entries.Create(ctx, &entry.Entry{UserID: uid, Title: "Day"})
	require.NoError(t, err)

	cred, err := s.Entries.LoadCredential(ctx, uid, id)
	require.NoError(t, err)
	assert.False(t, cred.IsProtected)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DB{Driver: "mongo"}, slog.Default())
	assert.Error(t, err)
}
