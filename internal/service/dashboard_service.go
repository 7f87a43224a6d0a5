package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/dto"
	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:summary"

type studentCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
}

type courseCounter interface {
	Count(ctx context.Context) (int, error)
}

type leadCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountBySource(ctx context.Context) ([]models.SourceCount, error)
}

type referralCounter interface {
	Count(ctx context.Context) (int, error)
}

type paymentAggregator interface {
	Count(ctx context.Context) (int, error)
	TotalsByStatus(ctx context.Context) ([]models.PaymentStatusTotal, error)
	MonthlyTotals(ctx context.Context, months int) ([]models.PaymentMonthlyTotal, error)
}

// summaryInvalidator is satisfied by *DashboardService and lets the
// mutating services drop the cached summary without depending on it
// directly.
type summaryInvalidator interface {
	Invalidate(ctx context.Context)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL      time.Duration
	RevenueMonths int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students  studentCounter
	Courses   courseCounter
	Leads     leadCounter
	Referrals referralCounter
	Payments  paymentAggregator
	Cache     *CacheService
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// DashboardService composes the aggregate counts behind the admin landing
// page. Aggregation always reads live tables; recycle bin contents are
// invisible here because soft-deleted rows no longer exist in them.
type DashboardService struct {
	students  studentCounter
	courses   courseCounter
	leads     leadCounter
	referrals referralCounter
	payments  paymentAggregator
	cache     *CacheService
	logger    *zap.Logger
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RevenueMonths <= 0 {
		cfg.RevenueMonths = 12
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:  params.Students,
		courses:   params.Courses,
		leads:     params.Leads,
		referrals: params.Referrals,
		payments:  params.Payments,
		cache:     params.Cache,
		logger:    logger,
		cfg:       cfg,
	}
}

// Summary returns the dashboard aggregates and indicates cache utilisation.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummaryResponse, bool, error) {
	var cached dto.DashboardSummaryResponse
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	summary, err := s.build(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard summary", zap.Error(err))
	}
	return summary, false, nil
}

// Invalidate drops the cached summary. Entity mutations call this so the
// next dashboard read reflects them.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// dropSummary clears the cached dashboard aggregate after a mutation.
// Services constructed without a dashboard, as in tests, skip it.
func dropSummary(ctx context.Context, dashboard summaryInvalidator) {
	if dashboard != nil {
		dashboard.Invalidate(ctx)
	}
}

func (s *DashboardService) build(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	summary := &dto.DashboardSummaryResponse{}
	var err error

	if summary.TotalStudents, err = s.students.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if summary.TotalCourses, err = s.courses.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	if summary.TotalLeads, err = s.leads.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leads")
	}
	if summary.TotalReferrals, err = s.referrals.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referrals")
	}
	if summary.TotalPayments, err = s.payments.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count payments")
	}
	if summary.StudentsByStatus, err = s.students.CountByStatus(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate students by status")
	}
	if summary.LeadsByStatus, err = s.leads.CountByStatus(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate leads by status")
	}
	if summary.LeadsBySource, err = s.leads.CountBySource(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate leads by source")
	}
	if summary.PaymentsByStatus, err = s.payments.TotalsByStatus(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate payments by status")
	}
	if summary.RevenueByMonth, err = s.payments.MonthlyTotals(ctx, s.cfg.RevenueMonths); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate monthly revenue")
	}
	return summary, nil
}
