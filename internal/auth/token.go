package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a presented token can be unusable:
// malformed, wrong signature, expired, or missing the subject claim.
var ErrInvalidToken = errors.New("invalid or expired token")

const issuer = "preloved-api"

// TokenService issues and verifies the HS256 access/refresh token pair.
// Access and refresh tokens are signed with independent secrets so a leaked
// refresh secret cannot mint access tokens and vice versa.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess returns a signed access token for the user.
func (t *TokenService) IssueAccess(userID uint) (string, error) {
	return sign(userID, t.accessSecret, t.accessTTL)
}

// IssueRefresh returns a signed refresh token for the user.
func (t *TokenService) IssueRefresh(userID uint) (string, error) {
	return sign(userID, t.refreshSecret, t.refreshTTL)
}

// ParseAccess validates an access token and returns the user ID it names.
func (t *TokenService) ParseAccess(token string) (uint, error) {
	return parse(token, t.accessSecret)
}

// ParseRefresh validates a refresh token and returns the user ID it names.
func (t *TokenService) ParseRefresh(token string) (uint, error) {
	return parse(token, t.refreshSecret)
}

// RefreshTTL exposes the refresh lifetime for the server-side token store.
func (t *TokenService) RefreshTTL() time.Duration { return t.refreshTTL }

func sign(userID uint, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"iss": issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parse(tokenString string, secret []byte) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
