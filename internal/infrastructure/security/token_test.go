package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(Options{Secret: []byte("test-secret-key"), TTL: ttl})
	require.NoError(t, err)
	return svc
}

func TestTokenService_RoundTrip(t *testing.T) {
	req := require.New(t)
	svc := newService(t, time.Hour)

	token, exp, err := svc.Generate("user-1")
	req.NoError(err)
	req.WithinDuration(time.Now().Add(time.Hour), exp, 5*time.Second)

	sub, err := svc.Verify(token)
	req.NoError(err)
	req.Equal("user-1", sub)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := newService(t, time.Hour)
	other, err := NewTokenService(Options{Secret: []byte("another-secret")})
	require.NoError(t, err)
	foreign, _, err := other.Generate("user-1")
	require.NoError(t, err)

	expired := newService(t, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Generate("user-1")
	require.NoError(t, err)

	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"expired", stale, ErrInvalidToken},
		{"alg none", none, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"header", "Bearer abc", "", "abc"},
		{"header case-insensitive scheme", "bearer abc", "", "abc"},
		{"query fallback", "", "xyz", "xyz"},
		{"header wins", "Bearer abc", "xyz", "abc"},
		{"wrong scheme", "Basic abc", "xyz", ""},
		{"nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws?token="+tt.query, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			require.Equal(t, tt.want, BearerToken(r))
		})
	}
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newService(t, time.Hour)
	token, _, err := svc.Generate("user-42")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAuth(svc), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	t.Run("authorized", func(t *testing.T) {
		req := require.New(t)
		w := httptest.NewRecorder()
		rq := httptest.NewRequest(http.MethodGet, "/me", nil)
		rq.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, rq)
		req.Equal(http.StatusOK, w.Code)
		req.Equal("user-42", w.Body.String())
	})

	t.Run("unauthorized", func(t *testing.T) {
		req := require.New(t)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		req.Equal(http.StatusUnauthorized, w.Code)
	})
}
