package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"preloved/backend/internal/auth"
)

func newTestService() *auth.TokenService {
	return auth.NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueAccess(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := svc.ParseAccess(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueRefresh(42)
	assert.NoError(t, err)

	userID, err := svc.ParseRefresh(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestService()

	access, _ := svc.IssueAccess(42)
	refresh, _ := svc.IssueRefresh(42)

	_, err := svc.ParseAccess(refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.ParseRefresh(access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := auth.NewTokenService("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := svc.IssueAccess(42)
	assert.NoError(t, err)

	_, err = svc.ParseAccess(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTestService()
	other := auth.NewTokenService("different-secret", "refresh-secret", time.Hour, time.Hour)

	token, _ := other.IssueAccess(42)

	_, err := svc.ParseAccess(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := newTestService()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ParseAccess(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	}
}
