package postgresql_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/pkg/database"
	"github.com/reslab/attendance-backend-go/internal/repository/postgresql"
)

var (
	testDB     *database.DB
	testDBOnce sync.Once
	testDBErr  error
)

// openTestDB connects to TEST_DATABASE_URL, migrates it and truncates every
// table. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(context.Background(), dsn, database.PoolConfig{MaxConns: 4})
		if testDBErr != nil {
			return
		}
		testDBErr = database.RunMigrations(testDB, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})
	require.NoError(t, testDBErr)

	ctx := context.Background()
	err := postgresql.WithTransaction(ctx, testDB, func(txCtx context.Context) error {
		tables := []string{"scan_logs", "attendances", "devices", "members", "admins"}
		for _, table := range tables {
			if _, err := postgresql.GetQuerier(txCtx, testDB).Exec(txCtx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return testDB
}
