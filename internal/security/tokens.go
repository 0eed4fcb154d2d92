package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or fails
// signature, issuer, or audience checks.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims holds the JWT claims of a session token. The subject is the
// user id; jti is a per-token nonce.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and validates session JWTs signed with a shared HMAC
// key (HS256). The configured issuer is set as both iss and aud.
type TokenProvider struct {
	key    []byte
	issuer string
	ttl    time.Duration

	// now is the clock used for iat/exp; overridable in tests.
	now func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with key. ttl bounds token
// validity from issuance.
func NewTokenProvider(key []byte, issuer string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{
		key:    key,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a signed session token for userID. Returns the compact
// serialized token, its jti, and the expiry instant.
func (p *TokenProvider) Issue(userID string) (token string, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.key)
	return token, jti, expiresAt, err
}

// Validate parses and validates a session token (signature, exp, iss, aud)
// and returns the subject user id.
func (p *TokenProvider) Validate(tokenString string) (userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.key, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return "", ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.issuer {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
