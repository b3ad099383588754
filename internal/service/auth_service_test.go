package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wiki-drafts/internal/models"
	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "wiki"})
}

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := newTestAuthService()

	token, expires, err := svc.IssueToken(IssueTokenRequest{UserID: 7, Role: models.RoleReviewer})
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.True(t, claims.Principal().Can(models.CapabilityApproveDrafts))
}

func TestAuthServiceIssueTokenValidation(t *testing.T) {
	svc := newTestAuthService()

	_, _, err := svc.IssueToken(IssueTokenRequest{UserID: 0, Role: models.RoleUser})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, _, err = svc.IssueToken(IssueTokenRequest{UserID: 1, Role: "admin"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.IssueToken(IssueTokenRequest{UserID: 3, Role: models.RoleUser})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrTokenExpired)
}

func TestAuthServiceRejectsForeignTokens(t *testing.T) {
	svc := newTestAuthService()

	other := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "wiki"})
	token, _, err := other.IssueToken(IssueTokenRequest{UserID: 3, Role: models.RoleUser})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	wrongIssuer := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "elsewhere"})
	token, _, err = wrongIssuer.IssueToken(IssueTokenRequest{UserID: 3, Role: models.RoleUser})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: 3}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
