package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	prev := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) {
		require.Equal(t, "postgres", driver)
		return db, err
	}
	t.Cleanup(func() { openDB = prev })
}

func TestDial(t *testing.T) {
	ctx := context.Background()

	t.Run("pings and migrates", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		mock.ExpectPing()
		for range schema {
			mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		got, err := Dial(ctx, "postgres://localhost/devevent")
		require.NoError(t, err)
		require.Same(t, db, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		_, err = Dial(ctx, "postgres://localhost/devevent")
		require.ErrorContains(t, err, "ping postgres")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migration failure closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		mock.ExpectPing()
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS events`).WillReturnError(errors.New("permission denied"))
		mock.ExpectClose()

		_, err = Dial(ctx, "postgres://localhost/devevent")
		require.ErrorContains(t, err, "migrate: permission denied")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
