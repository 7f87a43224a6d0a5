package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type mockCounters struct {
	students         int
	courses          int
	leads            int
	referrals        int
	payments         int
	studentsByStatus []models.StatusCount
	leadsByStatus    []models.StatusCount
	leadsBySource    []models.SourceCount
	paymentTotals    []models.PaymentStatusTotal
	monthlyTotals    []models.PaymentMonthlyTotal
	err              error
}

func (m *mockCounters) Count(ctx context.Context) (int, error) { return m.students, m.err }
func (m *mockCounters) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return m.studentsByStatus, m.err
}
func (m *mockCounters) CountBySource(ctx context.Context) ([]models.SourceCount, error) {
	return m.leadsBySource, m.err
}
func (m *mockCounters) TotalsByStatus(ctx context.Context) ([]models.PaymentStatusTotal, error) {
	return m.paymentTotals, m.err
}
func (m *mockCounters) MonthlyTotals(ctx context.Context, months int) ([]models.PaymentMonthlyTotal, error) {
	return m.monthlyTotals, m.err
}

func TestDashboardSummaryAggregates(t *testing.T) {
	counters := &mockCounters{
		students:         120,
		studentsByStatus: []models.StatusCount{{Status: models.StudentStatusEnrolled, Count: 95}},
		leadsByStatus:    []models.StatusCount{{Status: models.LeadStatusNew, Count: 12}},
		leadsBySource:    []models.SourceCount{{Source: "website", Count: 8}},
		paymentTotals:    []models.PaymentStatusTotal{{Status: models.PaymentStatusPaid, Count: 30, TotalCents: 4500000}},
		monthlyTotals:    []models.PaymentMonthlyTotal{{Month: "2025-08", TotalCents: 900000}},
	}
	svc := NewDashboardService(DashboardServiceParams{
		Students:  counters,
		Courses:   counters,
		Leads:     counters,
		Referrals: counters,
		Payments:  counters,
		Logger:    zap.NewNop(),
	})

	summary, fromCache, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 120, summary.TotalStudents)
	require.Len(t, summary.StudentsByStatus, 1)
	assert.Equal(t, 95, summary.StudentsByStatus[0].Count)
	require.Len(t, summary.RevenueByMonth, 1)
	assert.Equal(t, int64(900000), summary.RevenueByMonth[0].TotalCents)
}

func TestDashboardSummaryPropagatesFailure(t *testing.T) {
	counters := &mockCounters{err: errors.New("db down")}
	svc := NewDashboardService(DashboardServiceParams{
		Students:  counters,
		Courses:   counters,
		Leads:     counters,
		Referrals: counters,
		Payments:  counters,
		Logger:    zap.NewNop(),
	})

	_, _, err := svc.Summary(context.Background())
	require.Error(t, err)
}

type memCacheRepo struct {
	entries map[string][]byte
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(m.entries, pattern)
	return nil
}

func TestDashboardSummaryReflectsMutations(t *testing.T) {
	counters := &mockCounters{students: 7}
	cacheSvc := NewCacheService(&memCacheRepo{entries: map[string][]byte{}}, nil, time.Minute, zap.NewNop(), true)
	dashboard := NewDashboardService(DashboardServiceParams{
		Students:  counters,
		Courses:   counters,
		Leads:     counters,
		Referrals: counters,
		Payments:  counters,
		Cache:     cacheSvc,
		Logger:    zap.NewNop(),
	})

	summary, fromCache, err := dashboard.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 7, summary.TotalStudents)

	// A lower live count alone changes nothing while the cache holds.
	counters.students = 6
	summary, fromCache, err = dashboard.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 7, summary.TotalStudents)

	repo := &mockStudentRepo{students: map[string]models.Student{
		"stu-1": {ID: "stu-1", FullName: "Ana Reyes", Status: models.StudentStatusEnrolled},
	}}
	students := NewStudentService(repo, &mockHoldingArea{}, &mockAudit{}, dashboard, validator.New(), zap.NewNop())
	require.NoError(t, students.Delete(context.Background(), "stu-1", testActor()))

	summary, fromCache, err = dashboard.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 6, summary.TotalStudents)
}
