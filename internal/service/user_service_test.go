package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]models.User
	deleted    []string
	revoked    []string
	adminCount int
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepo) CountActiveAdmins(ctx context.Context) (int, error) {
	return m.adminCount, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

type mockScrubber struct {
	mockAudit
	scrubbed []string
	scrubErr error
}

func (m *mockScrubber) ScrubUser(ctx context.Context, userID string) error {
	if m.scrubErr != nil {
		return m.scrubErr
	}
	m.scrubbed = append(m.scrubbed, userID)
	return nil
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, &mockScrubber{}, validator.New(), zap.NewNop())

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "Admin@NurseAssist.Test",
		FullName: "Admin User",
		Role:     models.RoleAdmin,
		Active:   true,
		Password: "s3cret-pass",
	}, testActor())
	require.NoError(t, err)
	assert.Equal(t, "admin@nurseassist.test", user.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "admin@nurseassist.test"},
	}}
	svc := NewUserService(repo, &mockScrubber{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "admin@nurseassist.test",
		FullName: "Admin",
		Role:     models.RoleAdmin,
		Password: "s3cret-pass",
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteScrubsAuditTrail(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "staff@nurseassist.test", Role: models.RoleStaff, Active: true},
		},
		adminCount: 2,
	}
	scrubber := &mockScrubber{}
	svc := NewUserService(repo, scrubber, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "u1", testActor()))
	assert.Equal(t, []string{"u1"}, scrubber.scrubbed)
	assert.Equal(t, []string{"u1"}, repo.deleted)
	assert.Equal(t, []string{"u1"}, repo.revoked)
}

func TestUserServiceDeleteRefusesLastAdmin(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "admin@nurseassist.test", Role: models.RoleAdmin, Active: true},
		},
		adminCount: 1,
	}
	svc := NewUserService(repo, &mockScrubber{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "u1", testActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestUserServiceDeleteProceedsWhenScrubFails(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "staff@nurseassist.test", Role: models.RoleStaff},
		},
		adminCount: 2,
	}
	scrubber := &mockScrubber{scrubErr: appErrors.ErrStorage}
	svc := NewUserService(repo, scrubber, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "u1", testActor()))
	assert.Equal(t, []string{"u1"}, repo.deleted)
}

func TestUserServiceUpdateRefusesDemotingLastAdmin(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "admin@nurseassist.test", FullName: "Admin", Role: models.RoleAdmin, Active: true},
		},
		adminCount: 1,
	}
	svc := NewUserService(repo, &mockScrubber{}, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "u1", UpdateUserRequest{
		FullName: "Admin",
		Role:     models.RoleStaff,
	}, testActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateAllowsDemotionWithOtherAdmins(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "admin@nurseassist.test", FullName: "Admin", Role: models.RoleAdmin, Active: true},
		},
		adminCount: 3,
	}
	svc := NewUserService(repo, &mockScrubber{}, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "u1", UpdateUserRequest{
		FullName: "Admin",
		Role:     models.RoleStaff,
	}, testActor())
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, updated.Role)
}

func TestUserServiceResetPasswordRevokesSessions(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "staff@nurseassist.test", Role: models.RoleStaff, Active: true},
		},
	}
	audit := &mockScrubber{}
	svc := NewUserService(repo, audit, validator.New(), zap.NewNop())

	err := svc.ResetPassword(context.Background(), "u1", ResetPasswordRequest{Password: "fresh-secret"}, testActor())
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["u1"].PasswordHash), []byte("fresh-secret")))
	assert.Equal(t, []string{"u1"}, repo.revoked)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditSeverityWarning, audit.entries[0].Severity)
}

func TestUserServiceResetPasswordRejectsShortPassword(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "staff@nurseassist.test", Role: models.RoleStaff, Active: true},
		},
	}
	svc := NewUserService(repo, &mockScrubber{}, validator.New(), zap.NewNop())

	err := svc.ResetPassword(context.Background(), "u1", ResetPasswordRequest{Password: "short"}, testActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
