package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("security: missing bearer token")
	ErrInvalidToken = errors.New("security: invalid token")
)

const issuer = "cht-gateway"

// Options controls token signing.
type Options struct {
	Secret []byte        // HMAC key
	Alg    string        // HS256/HS384/HS512, HS256 when empty
	TTL    time.Duration // token lifetime, 7 days when zero
}

// TokenService issues and verifies HMAC-signed access tokens whose subject is the user id.
type TokenService struct {
	opts   Options
	method jwtlib.SigningMethod
	now    func() time.Time
}

func NewTokenService(opts Options) (*TokenService, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("security: empty secret")
	}
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return nil, err
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &TokenService{opts: opts, method: method, now: time.Now}, nil
}

// Generate signs a token for userID and returns it with its expiry.
func (s *TokenService) Generate(userID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.opts.TTL)
	claims := jwtlib.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwtlib.NewNumericDate(now),
		NotBefore: jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(exp),
	}
	signed, err := jwtlib.NewWithClaims(s.method, claims).SignedString(s.opts.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature and expiry and returns the token subject.
func (s *TokenService) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	var claims jwtlib.RegisteredClaims
	parsed, err := jwtlib.ParseWithClaims(token, &claims, func(t *jwtlib.Token) (interface{}, error) {
		// HMAC family only
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	}, jwtlib.WithExpirationRequired(), jwtlib.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s (use HS256/HS384/HS512)", alg)
	}
}
