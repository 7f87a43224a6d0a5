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

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows(students ...models.Student) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "phone", "date_of_birth", "address", "course_id", "status", "enrollment_date", "notes", "created_at", "updated_at"})
	for _, s := range students {
		rows.AddRow(s.ID, s.FullName, s.Email, s.Phone, s.DateOfBirth, s.Address, s.CourseID, s.Status, s.EnrollmentDate, s.Notes, s.CreatedAt, s.UpdatedAt)
	}
	return rows
}

func TestStudentRepositoryCreateAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		FullName: "Ana Reyes",
		Email:    "ana@example.com",
		Status:   models.StudentStatusEnrolled,
	}
	require.NoError(t, repo.Create(context.Background(), student))
	require.NotEmpty(t, student.ID)
	require.False(t, student.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryInsertKeepsIdentity(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	student := &models.Student{
		ID:        "student-1",
		FullName:  "Ben Cruz",
		Email:     "ben@example.com",
		Status:    models.StudentStatusCompleted,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, repo.Insert(context.Background(), student))
	require.Equal(t, "student-1", student.ID)
	require.Equal(t, created, student.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	now := time.Now()
	rows := studentRows(models.Student{
		ID:        "student-1",
		FullName:  "Ana Reyes",
		Email:     "ana@example.com",
		Status:    models.StudentStatusEnrolled,
		CreatedAt: now,
		UpdatedAt: now,
	})

	mock.ExpectQuery("SELECT .+ FROM students WHERE 1=1 AND .+LIKE").
		WithArgs("%ana%", models.StudentStatusEnrolled).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1")).
		WithArgs("%ana%", models.StudentStatusEnrolled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		Search: "Ana",
		Status: models.StudentStatusEnrolled,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, students, 1)
	require.Equal(t, "student-1", students[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs("student-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "student-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
