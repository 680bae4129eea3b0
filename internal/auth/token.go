package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("token signing secret is required")
	ErrInvalidTTL    = errors.New("token expiry must be a positive duration")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
)

// Identity is the subset of an identity record embedded into a token.
type Identity struct {
	Email string
	Role  string
}

// Claims is the decoded claim set of an access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for identity that expires ttl from now.
func IssueToken(identity Identity, secret []byte, ttl time.Duration) (string, error) {
	return issueAt(identity, secret, ttl, time.Now())
}

func issueAt(identity Identity, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString(secret)
}

// ParseTTL accepts Go durations ("90m"), whole or fractional days ("7d") and
// a bare number of seconds ("3600"). Anything under one second is rejected.
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidTTL
	}

	var ttl time.Duration
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		ttl = time.Duration(seconds) * time.Second
	} else if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, raw)
		}
		ttl = time.Duration(n * float64(24*time.Hour))
	} else {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, raw)
		}
		ttl = parsed
	}

	// exp is encoded in whole seconds.
	if ttl < time.Second {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, raw)
	}

	return ttl, nil
}

// TokenManager issues and validates access tokens with one shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl string) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}

	parsed, err := ParseTTL(ttl)
	if err != nil {
		return nil, err
	}

	return &TokenManager{secret: []byte(secret), ttl: parsed, now: time.Now}, nil
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(identity Identity) (string, error) {
	return issueAt(identity, m.secret, m.ttl, m.now())
}

// Validate checks the signature and expiry of tokenString and returns its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
