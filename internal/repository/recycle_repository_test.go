package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nurse-assist/nai-admin-api/internal/models"
)

func newRecycleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRecycleBinRepositoryInsertAndFind(t *testing.T) {
	db, mock, cleanup := newRecycleRepoMock(t)
	defer cleanup()

	repo := NewRecycleBinRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recycle_bin")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	deletedBy := "user-1"
	record := &models.RecycleBinRecord{
		OriginalTable: models.TableStudents,
		OriginalID:    "student-1",
		RecordData:    []byte(`{"id":"student-1","full_name":"Ana Reyes"}`),
		DeletedBy:     &deletedBy,
	}
	require.NoError(t, repo.Insert(context.Background(), record))
	require.NotEmpty(t, record.ID)
	require.False(t, record.DeletedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "original_table", "original_id", "record_data", "deleted_at", "deleted_by", "restored_at", "permanently_deleted_at"}).
		AddRow(record.ID, record.OriginalTable, record.OriginalID, []byte(record.RecordData), record.DeletedAt, deletedBy, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, original_table, original_id, record_data")).
		WithArgs(record.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.Equal(t, models.TableStudents, found.OriginalTable)
	require.True(t, found.Active())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecycleBinRepositoryListActiveExcludesTerminal(t *testing.T) {
	db, mock, cleanup := newRecycleRepoMock(t)
	defer cleanup()

	repo := NewRecycleBinRepository(db)
	rows := sqlmock.NewRows([]string{"id", "original_table", "original_id", "record_data", "deleted_at", "deleted_by", "restored_at", "permanently_deleted_at"}).
		AddRow("bin-1", models.TableLeads, "lead-1", []byte(`{"id":"lead-1"}`), time.Now(), nil, nil, nil)
	mock.ExpectQuery("SELECT .+ FROM recycle_bin\\s+WHERE restored_at IS NULL AND permanently_deleted_at IS NULL").
		WillReturnRows(rows)

	records, err := repo.ListActive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "bin-1", records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecycleBinRepositoryMarkRestoredGuardsTerminalState(t *testing.T) {
	db, mock, cleanup := newRecycleRepoMock(t)
	defer cleanup()

	repo := NewRecycleBinRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE recycle_bin SET restored_at = $2")).
		WithArgs("bin-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRestored(context.Background(), "bin-1", now))

	// The same record again: the guard matches zero rows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE recycle_bin SET restored_at = $2")).
		WithArgs("bin-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkRestored(context.Background(), "bin-1", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecycleBinRepositoryMarkPurgedGuardsTerminalState(t *testing.T) {
	db, mock, cleanup := newRecycleRepoMock(t)
	defer cleanup()

	repo := NewRecycleBinRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE recycle_bin SET permanently_deleted_at = $2")).
		WithArgs("bin-2", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkPurged(context.Background(), "bin-2", now))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE recycle_bin SET permanently_deleted_at = $2")).
		WithArgs("bin-2", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkPurged(context.Background(), "bin-2", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
