package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nurse-assist/nai-admin-api/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditLogRepositoryInsertDefaults(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditLogRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{
		UserEmail: "admin@nurseassist.test",
		Action:    models.AuditActionDelete,
		TableName: models.TableStudents,
	}
	require.NoError(t, repo.Insert(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.Equal(t, models.AuditSeverityInfo, entry.Severity)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditLogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "user_email", "action", "table_name", "record_id", "old_values", "new_values", "ip_address", "user_agent", "severity", "created_at"}).
		AddRow("audit-1", "user-1", "admin@nurseassist.test", "DELETE", "students", "student-1", nil, nil, "10.0.0.1", "test-agent", "warning", time.Now())

	mock.ExpectQuery("SELECT .+ FROM audit_logs WHERE 1=1 AND table_name = ").
		WithArgs("students", "DELETE").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE 1=1 AND table_name = $1 AND action = $2")).
		WithArgs("students", "DELETE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.AuditLogFilter{
		TableName: "students",
		Action:    "DELETE",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, entries, 1)
	require.Equal(t, "audit-1", entries[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepositoryScrubUser(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditLogRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE audit_logs SET user_id = NULL, user_email = $2 WHERE user_id = $1")).
		WithArgs("user-1", models.ScrubbedUserEmail).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.ScrubUser(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
