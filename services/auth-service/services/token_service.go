package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/Khizarkk7/storefront-backend/services/auth-service/models"
	commonauth "github.com/Khizarkk7/storefront-backend/services/common/auth"
)

const (
	AccessTokenTTL        = 15 * time.Minute
	RefreshTokenTTL       = 7 * 24 * time.Hour
	RememberMeRefreshTTL  = 30 * 24 * time.Hour
	PasswordResetCodeTTL  = 15 * time.Minute
	passwordResetCodeSize = 6
)

// TokenService signs and validates the JWTs handed to clients.
type TokenService struct {
	secretKey []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secretKey: []byte(secret)}
}

// GenerateTokenPair returns the pair plus the refresh token's jti, which is
// what gets persisted for revocation.
func (s *TokenService) GenerateTokenPair(user *models.User, rememberMe bool) (*models.TokenPair, string, error) {
	base := commonauth.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.Username,
		Role:   user.Role,
		RoleID: user.RoleID,
	}
	if user.ShopID != nil {
		base.ShopID = user.ShopID.String()
	}

	access := base
	access.Type = commonauth.TokenTypeAccess
	accessToken, accessExp, err := commonauth.Sign(s.secretKey, access, AccessTokenTTL)
	if err != nil {
		return nil, "", err
	}

	ttl := RefreshTokenTTL
	if rememberMe {
		ttl = RememberMeRefreshTTL
	}
	tokenID := uuid.NewString()
	refresh := base
	refresh.Type = commonauth.TokenTypeRefresh
	refresh.ID = tokenID
	refreshToken, refreshExp, err := commonauth.Sign(s.secretKey, refresh, ttl)
	if err != nil {
		return nil, "", err
	}

	return &models.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, tokenID, nil
}

func (s *TokenService) ValidateToken(tokenStr, expectedType string) (*commonauth.Claims, error) {
	return commonauth.ParseAndValidateToken(s.secretKey, tokenStr, expectedType)
}
