package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/auth-service/models"
	"github.com/Khizarkk7/storefront-backend/services/auth-service/repository"
	commonauth "github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any)
}

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserView, *ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, *ServiceError)
	Refresh(ctx context.Context, refreshToken string) (*models.LoginResult, *ServiceError)
	Logout(ctx context.Context, refreshToken string) *ServiceError
	ForgotPassword(ctx context.Context, email string) *ServiceError
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) *ServiceError
	Me(ctx context.Context, userID string) (*models.UserView, *ServiceError)
	Roles(ctx context.Context) ([]models.Role, *ServiceError)
}

type authServiceImpl struct {
	repo      repository.UserRepository
	tokens    *TokenService
	validator *commonauth.PasswordValidator
	publisher EventPublisher
	logger    *zap.Logger
}

func NewAuthService(repo repository.UserRepository, tokens *TokenService, publisher EventPublisher, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		repo:      repo,
		tokens:    tokens,
		validator: commonauth.NewPasswordValidator(),
		publisher: publisher,
		logger:    logger,
	}
}

var errInvalidCredentials = &ServiceError{StatusCode: 401, Message: "invalid email or password"}

func (s *authServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserView, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.ValidatePassword(req.Password); err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: err.Error()}
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, &ServiceError{StatusCode: 409, Message: "email already exists"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create account"}
	}

	hash, err := commonauth.HashPassword(req.Password)
	if err != nil {
		return nil, &ServiceError{StatusCode: 500, Message: "failed to hash password"}
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: strings.TrimSpace(req.Username),
		Email:    email,
		Password: hash,
		Role:     commonauth.RoleCustomer,
		RoleID:   commonauth.RoleIDCustomer,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, &ServiceError{StatusCode: 409, Message: "email already exists"}
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create account"}
	}

	s.publisher.Publish(ctx, events.TypeUserRegistered, events.UserRegistered{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))

	view := user.View()
	return &view, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, *ServiceError) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to look up user", zap.Error(err))
		}
		return nil, errInvalidCredentials
	}
	if !commonauth.CheckPassword(user.Password, req.Password) {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, &ServiceError{StatusCode: 403, Message: "account is inactive"}
	}
	return s.issue(ctx, user, req.RememberMe)
}

// Refresh rotates the refresh token: the presented jti is revoked and a new
// pair is issued with the same remember-me lifetime.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.LoginResult, *ServiceError) {
	if refreshToken == "" {
		return nil, &ServiceError{StatusCode: 401, Message: "refresh token required"}
	}
	claims, err := s.tokens.ValidateToken(refreshToken, commonauth.TokenTypeRefresh)
	if err != nil || claims.ID == "" {
		return nil, &ServiceError{StatusCode: 401, Message: "invalid refresh token"}
	}

	stored, err := s.repo.GetRefreshToken(ctx, claims.ID)
	if err != nil || stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, &ServiceError{StatusCode: 401, Message: "refresh token revoked or expired"}
	}

	user, err := s.repo.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "user not found"}
	}
	if !user.IsActive {
		return nil, &ServiceError{StatusCode: 403, Message: "account is inactive"}
	}

	if err := s.repo.RevokeRefreshToken(ctx, claims.ID); err != nil {
		s.logger.Error("Failed to revoke refresh token", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to refresh token"}
	}
	return s.issue(ctx, user, stored.RememberMe)
}

func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) *ServiceError {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ValidateToken(refreshToken, commonauth.TokenTypeRefresh)
	if err != nil || claims.ID == "" {
		// An unusable token needs no revocation.
		return nil
	}
	if err := s.repo.RevokeRefreshToken(ctx, claims.ID); err != nil {
		s.logger.Error("Failed to revoke refresh token", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to logout"}
	}
	return nil
}

// ForgotPassword never reveals whether the email exists.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) *ServiceError {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to look up user", zap.Error(err))
		}
		return nil
	}
	if !user.IsActive {
		return nil
	}

	code, err := GenerateNumericCode(passwordResetCodeSize)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "failed to generate reset code"}
	}
	reset := &models.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeHash:  hashCode(user.ID, code),
		ExpiresAt: time.Now().Add(PasswordResetCodeTTL),
	}
	if err := s.repo.CreatePasswordReset(ctx, reset); err != nil {
		s.logger.Error("Failed to store reset code", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to generate reset code"}
	}

	s.publisher.Publish(ctx, events.TypePasswordResetRequested, events.PasswordResetRequested{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		Code:      code,
		ExpiresIn: int(PasswordResetCodeTTL / time.Minute),
	})
	return nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) *ServiceError {
	invalid := &ServiceError{StatusCode: 400, Message: "invalid or expired reset code"}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return invalid
	}
	reset, err := s.repo.LatestPasswordReset(ctx, user.ID)
	if err != nil || reset.Used || time.Now().After(reset.ExpiresAt) {
		return invalid
	}
	if subtle.ConstantTimeCompare([]byte(reset.CodeHash), []byte(hashCode(user.ID, req.Code))) != 1 {
		return invalid
	}
	if err := s.validator.ValidatePassword(req.NewPassword); err != nil {
		return &ServiceError{StatusCode: 400, Message: err.Error()}
	}

	hash, err := commonauth.HashPassword(req.NewPassword)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "failed to hash password"}
	}
	if err := s.repo.MarkPasswordResetUsed(ctx, reset.ID); err != nil {
		s.logger.Error("Failed to consume reset code", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to reset password"}
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to reset password"}
	}
	if err := s.repo.RevokeAllUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to revoke refresh tokens after reset", zap.Error(err))
	}
	s.logger.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authServiceImpl) Me(ctx context.Context, userID string) (*models.UserView, *ServiceError) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "unauthorized"}
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &ServiceError{StatusCode: 404, Message: "user not found"}
	}
	view := user.View()
	return &view, nil
}

func (s *authServiceImpl) Roles(ctx context.Context) ([]models.Role, *ServiceError) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		s.logger.Error("Failed to list roles", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list roles"}
	}
	return roles, nil
}

func (s *authServiceImpl) issue(ctx context.Context, user *models.User, rememberMe bool) (*models.LoginResult, *ServiceError) {
	pair, tokenID, err := s.tokens.GenerateTokenPair(user, rememberMe)
	if err != nil {
		s.logger.Error("Failed to sign tokens", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to generate token"}
	}
	rt := &models.RefreshToken{
		ID:         uuid.New(),
		TokenID:    tokenID,
		UserID:     user.ID,
		RememberMe: rememberMe,
		ExpiresAt:  pair.RefreshExpiresAt,
	}
	if err := s.repo.CreateRefreshToken(ctx, rt); err != nil {
		s.logger.Error("Failed to persist refresh token", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to generate token"}
	}
	return &models.LoginResult{Tokens: pair, User: user.View()}, nil
}

// GenerateNumericCode returns n random decimal digits.
func GenerateNumericCode(n int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}

func hashCode(userID uuid.UUID, code string) string {
	sum := sha256.Sum256([]byte(userID.String() + ":" + code))
	return hex.EncodeToString(sum[:])
}
