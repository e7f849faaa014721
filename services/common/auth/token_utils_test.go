package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	token, exp, err := Sign(testSecret, Claims{
		UserID: "u-1",
		Email:  "owner@shop.pk",
		Role:   RoleShopAdmin,
		RoleID: RoleIDShopAdmin,
		ShopID: "s-1",
		Type:   TokenTypeAccess,
	}, 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := ParseAndValidateToken(testSecret, token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, RoleShopAdmin, claims.Role)
	assert.Equal(t, "s-1", claims.ShopID)
}

func TestParse_WrongType(t *testing.T) {
	token, _, err := Sign(testSecret, Claims{UserID: "u-1", Type: TokenTypeRefresh}, time.Minute)
	require.NoError(t, err)

	_, err = ParseAndValidateToken(testSecret, token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestParse_Expired(t *testing.T) {
	token, _, err := Sign(testSecret, Claims{UserID: "u-1", Type: TokenTypeAccess}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAndValidateToken(testSecret, token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	token, _, err := Sign(testSecret, Claims{UserID: "u-1", Type: TokenTypeAccess}, time.Minute)
	require.NoError(t, err)

	_, err = ParseAndValidateToken([]byte("other"), token, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSign_NoSecret(t *testing.T) {
	_, _, err := Sign(nil, Claims{UserID: "u"}, time.Minute)
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleSystemAdmin, NormalizeRole("systemAdmin"))
	assert.Equal(t, RoleShopAdmin, NormalizeRole("ShopAdmin"))
	assert.Equal(t, RoleShopAdmin, NormalizeRole("shop-admin"))
	assert.Equal(t, RoleCustomer, NormalizeRole("customer"))
	assert.Equal(t, "", NormalizeRole("root"))
	assert.Equal(t, RoleIDShopAdmin, RoleID("shop_admin"))
	assert.Equal(t, RoleCustomer, RoleName(RoleIDCustomer))
}
