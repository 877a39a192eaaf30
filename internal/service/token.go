package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for bad signatures and malformed tokens.
	ErrTokenInvalid = errors.New("invalid token")
)

var (
	jwtSecret []byte
	tokenTTL  time.Duration
)

// TokenClaims is the decoded identity assertion carried by a session token.
type TokenClaims struct {
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// InitJWT sets the process-wide signing key and token lifetime.
// Must be called once at startup before any token is minted or parsed.
func InitJWT(secret string, ttl time.Duration) {
	if secret == "" {
		panic("jwt secret must not be empty")
	}
	jwtSecret = []byte(secret)
	tokenTTL = ttl
}

// TokenTTL returns the configured session token lifetime.
func TokenTTL() time.Duration {
	return tokenTTL
}

// GenerateToken mints a signed token binding userID to an expiry of now+TTL.
func GenerateToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken verifies the signature and time claims. Verification is
// all-or-nothing: no field of the result is usable unless err is nil.
func ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	uid, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}

	tc := &TokenClaims{UserID: int64(uid)}
	if iat, ok := claims["iat"].(float64); ok {
		tc.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		tc.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return tc, nil
}
