package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type mockAuthRepo struct {
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	repo := &mockAuthRepo{
		users:  map[string]*models.User{},
		tokens: map[string]*models.RefreshToken{},
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (r *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (r *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range r.tokens {
		if token.UserID == userID {
			token.Revoked = true
			r.revoked = append(r.revoked, token.ID)
		}
	}
	return nil
}

func (r *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := r.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (r *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range r.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
			r.revoked = append(r.revoked, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func authFixtureUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "admin@nurseassist.test",
		PasswordHash: string(hash),
		FullName:     "Admin User",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func authFixtureConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "nai-admin-api",
	}
}

func TestAuthServiceLoginIssuesTokens(t *testing.T) {
	repo := newMockAuthRepo(authFixtureUser(t, "secret-pass"))
	audit := &mockAudit{}
	svc := NewAuthService(repo, audit, nil, nil, authFixtureConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@nurseassist.test",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "user-1", res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)
}

func TestAuthServiceLoginRejectsWrongPassword(t *testing.T) {
	repo := newMockAuthRepo(authFixtureUser(t, "secret-pass"))
	svc := NewAuthService(repo, &mockAudit{}, nil, nil, authFixtureConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@nurseassist.test",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	user := authFixtureUser(t, "secret-pass")
	user.Active = false
	svc := NewAuthService(newMockAuthRepo(user), &mockAudit{}, nil, nil, authFixtureConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@nurseassist.test",
		Password: "secret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthRepo(authFixtureUser(t, "secret-pass"))
	svc := NewAuthService(repo, &mockAudit{}, nil, nil, authFixtureConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@nurseassist.test",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked; a replay fails.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := newMockAuthRepo(authFixtureUser(t, "secret-pass"))
	svc := NewAuthService(repo, &mockAudit{}, nil, nil, authFixtureConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@nurseassist.test",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	otherID := "user-2"
	err = svc.Logout(context.Background(), login.RefreshToken, Actor{ID: &otherID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	ownerID := "user-1"
	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, Actor{ID: &ownerID}))
	stored, err := repo.FindRefreshToken(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := newMockAuthRepo(authFixtureUser(t, "secret-pass"))
	audit := &mockAudit{}
	svc := NewAuthService(repo, audit, nil, nil, authFixtureConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@nurseassist.test",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "next-secret",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "secret-pass",
		NewPassword: "next-secret",
	}))
	stored, err := repo.FindRefreshToken(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@nurseassist.test",
		Password: "next-secret",
	})
	require.NoError(t, err)
}
