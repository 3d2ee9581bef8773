package service

import (
	"acumenus/startpage-api/internal/apperr"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session token stays valid
const SessionTTL = 24 * time.Hour

var errEmptySecret = errors.New("token secret can't be empty")

// Identity is the authenticated caller carried by a session token
type Identity struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errEmptySecret
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}, nil
}

func (t *TokenService) TTL() time.Duration {
	return t.ttl
}

// Issue signs a new HS256 session token for id
func (t *TokenService) Issue(id Identity) (string, error) {
	now := t.now()

	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify decodes a session token. Any failure, be it a bad signature, a
// foreign algorithm, a malformed string or an expired token, is reported as
// the same InvalidToken error.
func (t *TokenService) Verify(token string) (Identity, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, apperr.Wrap(apperr.KindInvalidToken, "Invalid or expired token", err)
	}

	return Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
	}, nil
}
