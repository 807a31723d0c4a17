package services

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	pkgauth "github.com/mrossig/vidriera/pkg/auth"
	pkglogger "github.com/mrossig/vidriera/pkg/logger"
)

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(
		"access-secret-for-tests-0123456789",
		"refresh-secret-for-tests-0123456789",
		24*time.Hour,
		7*24*time.Hour,
	)
}

func newTestAuthService(repo UserRepository) *AuthService {
	logger := slog.Default()
	return NewAuthService(repo, testTokenManager(), &MockEmailService{}, logger, pkglogger.NewAuditLogger(logger))
}

func assertAppErrorStatus(t *testing.T, err error, wantStatus int) {
	t.Helper()
	appErr, ok := models.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, wantStatus, appErr.Status)
}

func TestAuthService_Register_Success(t *testing.T) {
	var createdUser *models.User
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.CreatedAt = time.Now()
			createdUser = user
			return user, nil
		},
	}
	svc := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), "Ana García", "Ana@Example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ana García", resp.User.Name)
	require.NotNil(t, resp.User.Email)
	assert.Equal(t, "ana@example.com", *resp.User.Email, "email is normalized to lower case")
	assert.Equal(t, models.DefaultPlanID, resp.User.PlanID)

	require.NotNil(t, createdUser)
	assert.NotEmpty(t, createdUser.ID)
	require.NotNil(t, createdUser.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(*createdUser.PasswordHash, "secret1"))
	assert.Equal(t, models.ProviderEmail, createdUser.Provider)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser("existing-user", email, "Existing"), nil
		},
	}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1")
	assertAppErrorStatus(t, err, http.StatusConflict)
}

func TestAuthService_Register_LosesCreationRace(t *testing.T) {
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1")
	assertAppErrorStatus(t, err, http.StatusConflict)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	cases := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"short name", "A", "ana@example.com", "secret1"},
		{"empty email", "Ana", "", "secret1"},
		{"short password", "Ana", "ana@example.com", "12345"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.userName, tc.email, tc.password)
			assertAppErrorStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := pkgauth.HashPassword("secret1")
	require.NoError(t, err)

	user := NewTestUser("user-1234", "ana@example.com", "Ana")
	user.PasswordHash = &hash

	lastLoginUpdated := false
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "ana@example.com", email)
			return user, nil
		},
		UpdateLastLoginFunc: func(ctx context.Context, id string, at time.Time) error {
			assert.Equal(t, "user-1234", id)
			lastLoginUpdated = true
			return nil
		},
	}
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), "ANA@example.com", "secret1")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, lastLoginUpdated)
	require.NotNil(t, resp.User)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	hash, err := pkgauth.HashPassword("right-password")
	require.NoError(t, err)

	passwordUser := NewTestUser("user-1", "ana@example.com", "Ana")
	passwordUser.PasswordHash = &hash

	oauthUser := NewTestUser("user-2", "oauth@example.com", "Marco")
	oauthUser.Provider = models.ProviderMicrosoft

	cases := []struct {
		name     string
		email    string
		password string
		repoUser *models.User
		repoErr  error
	}{
		{"unknown email", "nobody@example.com", "whatever", nil, models.ErrNotFound},
		{"oauth-only account", "oauth@example.com", "whatever", oauthUser, nil},
		{"wrong password", "ana@example.com", "wrong-password", passwordUser, nil},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockUserRepository{
				GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
					return tc.repoUser, tc.repoErr
				},
			}
			svc := newTestAuthService(repo)

			_, err := svc.Login(context.Background(), tc.email, tc.password)
			assertAppErrorStatus(t, err, http.StatusUnauthorized)
			messages = append(messages, err.Error())
		})
	}

	// Every failure mode reads identically to the caller.
	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}

func TestAuthService_Login_LastLoginFailureIsNonFatal(t *testing.T) {
	hash, err := pkgauth.HashPassword("secret1")
	require.NoError(t, err)

	user := NewTestUser("user-1234", "ana@example.com", "Ana")
	user.PasswordHash = &hash

	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
		UpdateLastLoginFunc: func(ctx context.Context, id string, at time.Time) error {
			return assert.AnError
		},
	}
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestAuthService_ResolveFromAccessToken(t *testing.T) {
	user := NewTestUser("user-1234", "ana@example.com", "Ana")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			assert.Equal(t, "user-1234", id)
			return user, nil
		},
	}
	svc := newTestAuthService(repo)

	token, err := testTokenManager().GenerateAccessToken(user)
	require.NoError(t, err)

	resolved, err := svc.ResolveFromAccessToken(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "user-1234", resolved.ID)
}

func TestAuthService_ResolveFromAccessToken_UserGone(t *testing.T) {
	user := NewTestUser("user-1234", "ana@example.com", "Ana")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}
	svc := newTestAuthService(repo)

	token, err := testTokenManager().GenerateAccessToken(user)
	require.NoError(t, err)

	resolved, err := svc.ResolveFromAccessToken(context.Background(), token)
	require.NoError(t, err, "a deleted account is not an error")
	assert.Nil(t, resolved)
}

func TestAuthService_ResolveFromAccessToken_InvalidToken(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	_, err := svc.ResolveFromAccessToken(context.Background(), "garbage")
	assertAppErrorStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_RefreshAccessToken(t *testing.T) {
	user := NewTestUser("user-1234", "ana@example.com", "Ana")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newTestAuthService(repo)

	tm := testTokenManager()
	refreshToken, err := tm.GenerateRefreshToken("user-1234")
	require.NoError(t, err)

	accessToken, err := svc.RefreshAccessToken(context.Background(), refreshToken)
	require.NoError(t, err)

	claims, err := tm.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1234", claims.UserID)
}

func TestAuthService_RefreshAccessToken_RejectsAccessToken(t *testing.T) {
	user := NewTestUser("user-1234", "ana@example.com", "Ana")
	svc := newTestAuthService(&MockUserRepository{})

	accessToken, err := testTokenManager().GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = svc.RefreshAccessToken(context.Background(), accessToken)
	assertAppErrorStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_RefreshAccessToken_UserGone(t *testing.T) {
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}
	svc := newTestAuthService(repo)

	refreshToken, err := testTokenManager().GenerateRefreshToken("user-1234")
	require.NoError(t, err)

	_, err = svc.RefreshAccessToken(context.Background(), refreshToken)
	assertAppErrorStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_FindOrCreateOAuthUser_ExistingUser(t *testing.T) {
	user := NewTestUser("ms-subject-1234", "marco@example.com", "Marco")
	user.Provider = models.ProviderMicrosoft

	lastLoginUpdated := false
	repo := &MockUserRepository{
		GetByOAuthIDFunc: func(ctx context.Context, oauthID string) (*models.User, error) {
			assert.Equal(t, "ms-subject-1234", oauthID)
			return user, nil
		},
		UpdateLastLoginFunc: func(ctx context.Context, id string, at time.Time) error {
			lastLoginUpdated = true
			return nil
		},
	}
	svc := newTestAuthService(repo)

	resolved, isNew, err := svc.FindOrCreateOAuthUser(context.Background(), "ms-subject-1234", "Marco", "marco@example.com")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "ms-subject-1234", resolved.ID)
	assert.True(t, lastLoginUpdated)
	assert.NotNil(t, resolved.LastLoginAt)
}

func TestAuthService_FindOrCreateOAuthUser_CreatesUser(t *testing.T) {
	var createdUser *models.User
	repo := &MockUserRepository{
		GetByOAuthIDFunc: func(ctx context.Context, oauthID string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.CreatedAt = time.Now()
			createdUser = user
			return user, nil
		},
	}
	svc := newTestAuthService(repo)

	resolved, isNew, err := svc.FindOrCreateOAuthUser(context.Background(), "ms-subject-1234", "Marco", "Marco@Example.com")
	require.NoError(t, err)
	assert.True(t, isNew)

	require.NotNil(t, createdUser)
	assert.Equal(t, "ms-subject-1234", createdUser.ID, "provider subject id doubles as the primary key")
	assert.Equal(t, models.ProviderMicrosoft, createdUser.Provider)
	assert.Nil(t, createdUser.PasswordHash)
	require.NotNil(t, createdUser.Email)
	assert.Equal(t, "marco@example.com", *createdUser.Email)
	assert.NotNil(t, resolved.LastLoginAt)
}

func TestAuthService_FindOrCreateOAuthUser_EmailCollision(t *testing.T) {
	repo := &MockUserRepository{
		GetByOAuthIDFunc: func(ctx context.Context, oauthID string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser("password-user", email, "Ana"), nil
		},
	}
	svc := newTestAuthService(repo)

	_, _, err := svc.FindOrCreateOAuthUser(context.Background(), "ms-subject-1234", "Ana", "ana@example.com")
	assertAppErrorStatus(t, err, http.StatusConflict)
}

func TestAuthService_FindOrCreateOAuthUser_MissingSubject(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	_, _, err := svc.FindOrCreateOAuthUser(context.Background(), "", "Ana", "ana@example.com")
	assertAppErrorStatus(t, err, http.StatusBadRequest)
}

func TestAuthService_DeleteUser(t *testing.T) {
	deleted := false
	repo := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			assert.Equal(t, "user-1234", id)
			deleted = true
			return nil
		},
	}
	svc := newTestAuthService(repo)

	require.NoError(t, svc.DeleteUser(context.Background(), "user-1234"))
	assert.True(t, deleted)
}

func TestAuthService_DeleteUser_NotFound(t *testing.T) {
	repo := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	svc := newTestAuthService(repo)

	err := svc.DeleteUser(context.Background(), "user-1234")
	assertAppErrorStatus(t, err, http.StatusNotFound)
}

func TestAuthService_DeleteUser_ImplausibleID(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	err := svc.DeleteUser(context.Background(), "abc")
	assertAppErrorStatus(t, err, http.StatusBadRequest)
}
