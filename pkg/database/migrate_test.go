package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Ordered(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte("SELECT 2")},
		"m/0001_first.sql":  {Data: []byte("SELECT 1")},
		"m/README.md":       {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, "second", migrations[1].Name)
}

func TestLoadMigrations_RejectsBadName(t *testing.T) {
	fsys := fstest.MapFS{"m/nounderscore.sql": {Data: []byte("SELECT 1")}}

	_, err := LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	migrations, err := LoadMigrations(migrationFiles, "migrations")
	require.NoError(t, err)
	assert.NotEmpty(t, migrations)
}

func TestMigrator_UpSkipsApplied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	m := &Migrator{db: mock, migrations: []Migration{
		{Version: "0001", Name: "first", SQL: "CREATE TABLE a (id INT)"},
		{Version: "0002", Name: "second", SQL: "CREATE TABLE b (id INT)"},
	}}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT version, applied_at FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).AddRow("0001", time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE b`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs("0002", "second").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	done, err := m.Up(context.Background())
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "0002", done[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_UpRollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	m := &Migrator{db: mock, migrations: []Migration{{Version: "0001", Name: "broken", SQL: "CREATE TABLE broken"}}}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT version, applied_at FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE broken`).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	done, err := m.Up(context.Background())
	assert.Error(t, err)
	assert.Empty(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_Status(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	appliedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m := &Migrator{db: mock, migrations: []Migration{
		{Version: "0001", Name: "first"},
		{Version: "0002", Name: "second"},
	}}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT version, applied_at FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).AddRow("0001", appliedAt))

	statuses, err := m.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	require.NotNil(t, statuses[0].AppliedAt)
	assert.Equal(t, appliedAt, *statuses[0].AppliedAt)
	assert.Nil(t, statuses[1].AppliedAt)
}
