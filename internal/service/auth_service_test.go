package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findByEmailErr   error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func authConfigForTest() AuthConfig {
	return AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "college-management",
		Audience:          []string{"college-api"},
	}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "asha.rao@design.edu",
		PasswordHash: string(hash),
		FullName:     "Asha Rao",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestAuthServiceLoginIssuesToken(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "s3cret!")}
	svc := NewAuthService(repo, nil, nil, authConfigForTest())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha.rao@design.edu",
		Password: "s3cret!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "Asha Rao", resp.User.FullName)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginRejectsWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "s3cret!")}
	svc := NewAuthService(repo, nil, nil, authConfigForTest())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha.rao@design.edu",
		Password: "wrong",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := NewAuthService(repo, nil, nil, authConfigForTest())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@design.edu",
		Password: "anything",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginBlocksInactiveAccount(t *testing.T) {
	user := activeUser(t, "s3cret!")
	user.Active = false
	svc := NewAuthService(&mockAuthRepo{user: user}, nil, nil, authConfigForTest())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "s3cret!",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceLoginValidatesPayload(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, authConfigForTest())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "s3cret!")}
	issuer := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret: "other-secret",
		AccessTokenExpiry: time.Minute,
	})
	resp, err := issuer.Login(context.Background(), models.LoginRequest{
		Email:    "asha.rao@design.edu",
		Password: "s3cret!",
	})
	require.NoError(t, err)

	verifier := NewAuthService(repo, nil, nil, authConfigForTest())
	_, err = verifier.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, authConfigForTest())

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
}
