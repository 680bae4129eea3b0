package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Duration{
		"3600":  time.Hour,
		"90m":   90 * time.Minute,
		"1h30m": 90 * time.Minute,
		"7d":    7 * 24 * time.Hour,
		"1.5d":  36 * time.Hour,
		" 2h ":  2 * time.Hour,
		"1s":    time.Second,
	}
	for raw, want := range cases {
		got, err := ParseTTL(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "abc", "0", "-5m", "xd", "10 days", "500ms", "999ms", "0.00001d"} {
		_, err := ParseTTL(raw)
		require.ErrorIs(t, err, ErrInvalidTTL, raw)
	}
}

func TestIssueTokenRejectsMisconfiguration(t *testing.T) {
	t.Parallel()

	_, err := IssueToken(Identity{Email: "a@x.com", Role: "user"}, nil, time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)

	_, err = IssueToken(Identity{Email: "a@x.com", Role: "user"}, []byte("k"), 0)
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = NewTokenManager("", "1h")
	require.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewTokenManager("secret", "500ms")
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = NewTokenManager("secret", "soon")
	require.ErrorIs(t, err, ErrInvalidTTL)
}

func TestTokenManagerRoundTrip(t *testing.T) {
	t.Parallel()

	manager, err := NewTokenManager("test-secret", "1h")
	require.NoError(t, err)

	token, err := manager.Issue(Identity{Email: "a@x.com", Role: "user"})
	require.NoError(t, err)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "user", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManagerExpiry(t *testing.T) {
	t.Parallel()

	manager, err := NewTokenManager("test-secret", "1")
	require.NoError(t, err)

	issuedAt := time.Now()
	manager.now = func() time.Time { return issuedAt }

	token, err := manager.Issue(Identity{Email: "a@x.com", Role: "user"})
	require.NoError(t, err)

	_, err = manager.Validate(token)
	require.NoError(t, err)

	manager.now = func() time.Time { return issuedAt.Add(2 * time.Second) }
	_, err = manager.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenExpiresInRealTime(t *testing.T) {
	t.Parallel()

	manager, err := NewTokenManager("test-secret", "1")
	require.NoError(t, err)

	token, err := manager.Issue(Identity{Email: "a@x.com", Role: "user"})
	require.NoError(t, err)

	_, err = manager.Validate(token)
	require.NoError(t, err)

	time.Sleep(2100 * time.Millisecond)

	_, err = manager.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManagerRejectsForeignTokens(t *testing.T) {
	t.Parallel()

	manager, err := NewTokenManager("right-secret", "1h")
	require.NoError(t, err)

	other, err := NewTokenManager("wrong-secret", "1h")
	require.NoError(t, err)
	forged, err := other.Issue(Identity{Email: "a@x.com", Role: "user"})
	require.NoError(t, err)

	_, err = manager.Validate(forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Validate("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Validate("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManagerRejectsUnsignedAndNonExpiring(t *testing.T) {
	t.Parallel()

	manager, err := NewTokenManager("test-secret", "1h")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = manager.Validate(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)

	forever, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "a@x.com"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = manager.Validate(forever)
	require.ErrorIs(t, err, ErrInvalidToken)
}
