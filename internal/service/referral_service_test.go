package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type mockReferralRepo struct {
	referrals map[string]*models.Referral
	deleted   []string
}

func newMockReferralRepo(referrals ...*models.Referral) *mockReferralRepo {
	repo := &mockReferralRepo{referrals: map[string]*models.Referral{}}
	for _, r := range referrals {
		repo.referrals[r.ID] = r
	}
	return repo
}

func (r *mockReferralRepo) List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, int, error) {
	out := make([]models.Referral, 0, len(r.referrals))
	for _, referral := range r.referrals {
		out = append(out, *referral)
	}
	return out, len(out), nil
}

func (r *mockReferralRepo) FindByID(ctx context.Context, id string) (*models.Referral, error) {
	referral, ok := r.referrals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *referral
	return &copied, nil
}

func (r *mockReferralRepo) Create(ctx context.Context, referral *models.Referral) error {
	if referral.ID == "" {
		referral.ID = "generated"
	}
	r.referrals[referral.ID] = referral
	return nil
}

func (r *mockReferralRepo) Update(ctx context.Context, referral *models.Referral) error {
	r.referrals[referral.ID] = referral
	return nil
}

func (r *mockReferralRepo) Delete(ctx context.Context, id string) error {
	delete(r.referrals, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func referralFixture() *models.Referral {
	return &models.Referral{
		ID:             "referral-1",
		PartnerName:    "Care Partners Ltd",
		ContactName:    "Maria Santos",
		Email:          "maria@carepartners.test",
		CommissionRate: 12.5,
		Active:         true,
	}
}

func TestReferralServiceCreateActivatesPartner(t *testing.T) {
	repo := newMockReferralRepo()
	audit := &mockAudit{}
	svc := NewReferralService(repo, &mockHoldingArea{}, audit, nil, nil, nil)

	referral, err := svc.Create(context.Background(), CreateReferralRequest{
		PartnerName:    "Care Partners Ltd",
		CommissionRate: 12.5,
	}, testActor())
	require.NoError(t, err)
	assert.True(t, referral.Active)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionCreate, audit.entries[0].Action)
}

func TestReferralServiceCreateRejectsCommissionOutOfRange(t *testing.T) {
	svc := NewReferralService(newMockReferralRepo(), &mockHoldingArea{}, &mockAudit{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateReferralRequest{
		PartnerName:    "Care Partners Ltd",
		CommissionRate: 110,
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReferralServiceDeleteSnapshotsFirst(t *testing.T) {
	repo := newMockReferralRepo(referralFixture())
	recycle := &mockHoldingArea{}
	audit := &mockAudit{}
	svc := NewReferralService(repo, recycle, audit, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "referral-1", testActor()))
	require.Len(t, recycle.moved, 1)
	assert.Equal(t, models.TableReferrals, recycle.moved[0].Table)
	assert.Equal(t, []string{"referral-1"}, repo.deleted)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditSeverityWarning, audit.entries[0].Severity)
}

func TestReferralServiceDeleteAbortsWhenSnapshotFails(t *testing.T) {
	repo := newMockReferralRepo(referralFixture())
	recycle := &mockHoldingArea{err: appErrors.ErrStorage}
	svc := NewReferralService(repo, recycle, &mockAudit{}, nil, nil, nil)

	err := svc.Delete(context.Background(), "referral-1", testActor())
	require.Error(t, err)
	assert.Empty(t, repo.deleted)
	assert.Contains(t, repo.referrals, "referral-1")
}
