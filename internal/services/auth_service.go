package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	pkgauth "github.com/mrossig/vidriera/pkg/auth"
	pkglogger "github.com/mrossig/vidriera/pkg/logger"
)

// Shortest id we accept on delete; real ids are UUIDs or provider subject
// ids, both well past this.
const minUserIDLen = 8

// UserRepository is the credential store surface the auth service consumes.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByOAuthID(ctx context.Context, oauthID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// AuthService orchestrates login, registration, OAuth find-or-create and
// token-to-user resolution. It holds no state between requests.
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	email       EmailService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(repo UserRepository, tm *auth.TokenManager, email EmailService, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// UserResponse is the user shape returned to clients.
type UserResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Provider    string  `json:"provider"`
	PlanID      string  `json:"plan_id"`
	CreatedAt   string  `json:"created_at"`
	LastLoginAt *string `json:"last_login_at"`
}

// AuthResponse is returned by operations that authenticate a user.
type AuthResponse struct {
	Success      bool          `json:"success"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *UserResponse `json:"user"`
}

// UserToResponse maps a user row onto the client-facing shape.
func UserToResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Provider:  user.Provider,
		PlanID:    user.PlanID,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &lastLogin
	}
	return resp
}

// Register creates a password account, assigns the default plan and returns
// a fresh token pair. The duplicate pre-check is best effort: a concurrent
// insert still surfaces as a conflict through the unique constraint.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(name) < 2 {
		return nil, models.NewValidationError("name must be at least 2 characters")
	}
	if email == "" {
		return nil, models.NewValidationError("email is required")
	}
	if len(password) < pkgauth.MinPasswordLen {
		return nil, models.NewValidationError("password must be at least 6 characters")
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: email already in use")
		return nil, models.NewConflict("email already registered")
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing email", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        &email,
		PasswordHash: &hashedPassword,
		Provider:     models.ProviderEmail,
		PlanID:       models.DefaultPlanID,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost the race against a concurrent registration
			return nil, models.NewConflict("email already registered")
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	accessToken, refreshToken, err := s.issueTokenPair(created)
	if err != nil {
		return nil, err
	}

	s.sendWelcomeEmail(created)

	s.logger.Info("user registered", slog.String("user_id", created.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "register",
		UserID:    created.ID,
		Provider:  models.ProviderEmail,
		Success:   true,
	})

	return &AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         UserToResponse(created),
	}, nil
}

// Login authenticates an email/password pair. Unknown email, OAuth-only
// account and hash mismatch all collapse into the same generic failure to
// avoid account enumeration.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.NewUnauthorized("invalid email or password")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logFailedLogin("")
			return nil, models.NewUnauthorized("invalid email or password")
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	if !user.HasPassword() {
		// OAuth-only account; same generic failure
		s.logFailedLogin(user.ID)
		return nil, models.NewUnauthorized("invalid email or password")
	}

	if err := pkgauth.ComparePassword(*user.PasswordHash, password); err != nil {
		s.logFailedLogin(user.ID)
		return nil, models.NewUnauthorized("invalid email or password")
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; the stamp is informational
		s.logger.Warn("failed to update last login", slog.String("user_id", user.ID), slog.Any("error", err))
	} else {
		user.LastLoginAt = &now
	}

	accessToken, refreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Provider:  models.ProviderEmail,
		Success:   true,
	})

	return &AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         UserToResponse(user),
	}, nil
}

// ResolveFromAccessToken verifies the token and fetches the user row fresh:
// claims supply only identity. A valid token whose user no longer exists
// resolves to nil without error.
func (s *AuthService) ResolveFromAccessToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tm.ValidateAccessToken(token)
	if err != nil {
		return nil, models.NewUnauthorized("invalid or expired token")
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to resolve user from token", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	return user, nil
}

// RefreshAccessToken mints a new access token from a valid refresh token.
// The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", models.NewUnauthorized("invalid or expired token")
	}

	claims, err := s.tm.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return "", models.NewUnauthorized("invalid or expired token")
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found for token refresh", slog.String("user_id", claims.UserID))
			return "", models.NewUnauthorized("invalid or expired token")
		}
		s.logger.Error("failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return "", models.NewServerError("internal server error")
	}

	accessToken, err := s.tm.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", models.NewServerError("internal server error")
	}

	return accessToken, nil
}

// FindOrCreateOAuthUser resolves a Microsoft login. Lookup is by the provider
// subject id; on the found branch last_login moves forward. A pre-existing
// password account on the same email is surfaced as a conflict instead of
// silently creating a second account with that email.
func (s *AuthService) FindOrCreateOAuthUser(ctx context.Context, oauthID, name, email string) (*models.User, bool, error) {
	if oauthID == "" {
		return nil, false, models.NewValidationError("oauth id is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByOAuthID(ctx, oauthID)
	if err == nil {
		now := time.Now()
		if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			s.logger.Warn("failed to update last login", slog.String("user_id", user.ID), slog.Any("error", err))
		} else {
			user.LastLoginAt = &now
		}

		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType: "oauth_login",
			UserID:    user.ID,
			Provider:  models.ProviderMicrosoft,
			Success:   true,
		})
		return user, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up oauth user", slog.Any("error", err))
		return nil, false, models.NewServerError("internal server error")
	}

	if email != "" {
		existing, err := s.repo.GetByEmail(ctx, email)
		if err == nil && existing != nil {
			s.logger.Warn("oauth login collides with existing email account",
				slog.String("email", pkglogger.SanitizedEmail(email)),
				slog.String("existing_user_id", existing.ID))
			return nil, false, models.NewConflict("an account with this email already exists; sign in with your password")
		}
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to look up email for oauth user", slog.Any("error", err))
			return nil, false, models.NewServerError("internal server error")
		}
	}

	now := time.Now()
	user = &models.User{
		ID:          oauthID, // provider subject id doubles as the primary key
		Name:        name,
		OAuthID:     &oauthID,
		Provider:    models.ProviderMicrosoft,
		PlanID:      models.DefaultPlanID,
		LastLoginAt: &now,
	}
	if email != "" {
		user.Email = &email
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, false, models.NewConflict("an account with this email already exists; sign in with your password")
		}
		s.logger.Error("failed to create oauth user", slog.Any("error", err))
		return nil, false, models.NewServerError("internal server error")
	}

	s.sendWelcomeEmail(created)

	s.logger.Info("oauth user created", slog.String("user_id", created.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "oauth_register",
		UserID:    created.ID,
		Provider:  models.ProviderMicrosoft,
		Success:   true,
	})

	return created, true, nil
}

// IssueTokenPair exposes token issuance for the OAuth callback, which
// authenticates outside Login.
func (s *AuthService) IssueTokenPair(user *models.User) (accessToken, refreshToken string, err error) {
	return s.issueTokenPair(user)
}

// DeleteUser removes an account. The id check is syntactic only; a missing
// row is the real authority.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if len(strings.TrimSpace(id)) < minUserIDLen {
		return models.NewValidationError("invalid user id")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFound("user not found")
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.NewServerError("internal server error")
	}

	s.auditLogger.LogAccountAction("user_deleted", id, nil)
	return nil
}

func (s *AuthService) issueTokenPair(user *models.User) (string, string, error) {
	accessToken, err := s.tm.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", "", models.NewServerError("internal server error")
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", "", models.NewServerError("internal server error")
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) sendWelcomeEmail(user *models.User) {
	if s.email == nil || user.Email == nil {
		return
	}
	email := *user.Email
	name := user.Name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.email.SendWelcomeEmail(ctx, email, name); err != nil {
			s.logger.Warn("welcome email delivery failed", slog.Any("error", err))
		}
	}()
}

func (s *AuthService) logFailedLogin(userID string) {
	s.logger.Info("login failed: invalid credentials")
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType:     "login_failed",
		UserID:        userID,
		FailureReason: "invalid_credentials",
		Success:       false,
	})
}
