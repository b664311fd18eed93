package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

const (
	DefaultAccessTTL  = 20 * time.Minute
	DefaultRefreshTTL = 90 * 24 * time.Hour
)

// CodecConfig carries the kind-specific signing secrets and lifetimes.
// Secrets are mandatory; TTLs fall back to the defaults above.
type CodecConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec issues and validates HS512-signed bearer tokens. Access and
// refresh tokens use distinct secrets, so a structurally valid token of
// one kind never verifies as the other.
type Codec struct {
	secrets map[domain.TokenKind][]byte
	ttls    map[domain.TokenKind]time.Duration
	now     func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Kind domain.TokenKind `json:"kind"`
}

// NewCodec fails when either secret is missing; that is a startup
// misconfiguration, not a request-time condition.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("both access and refresh token secrets must be configured")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Codec{
		secrets: map[domain.TokenKind][]byte{
			domain.TokenAccess:  []byte(cfg.AccessSecret),
			domain.TokenRefresh: []byte(cfg.RefreshSecret),
		},
		ttls: map[domain.TokenKind]time.Duration{
			domain.TokenAccess:  cfg.AccessTTL,
			domain.TokenRefresh: cfg.RefreshTTL,
		},
		now: time.Now,
	}, nil
}

// Issue signs a token of the given kind for userID.
func (c *Codec) Issue(kind domain.TokenKind, userID int64) (string, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	now := c.now()
	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttls[kind])),
		},
		Kind: kind,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, cl).SignedString(secret)
}

// Validate verifies signature, kind and expiry against the expected
// kind's secret and returns the subject user id. The error wraps one of
// ports.ErrTokenMalformed, ports.ErrTokenWrongKind or
// ports.ErrTokenExpired. A token that is both of the wrong kind and
// expired reports wrong-kind, since that case must not trigger any
// cleanup side effect.
func (c *Codec) Validate(kind domain.TokenKind, token string) (int64, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return 0, fmt.Errorf("unknown token kind %q", kind)
	}
	var cl claims
	_, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			if cl.Kind != kind {
				return 0, fmt.Errorf("%w: got %q", ports.ErrTokenWrongKind, cl.Kind)
			}
			return 0, ports.ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", ports.ErrTokenMalformed, err)
	}
	if cl.Kind != kind {
		return 0, fmt.Errorf("%w: got %q", ports.ErrTokenWrongKind, cl.Kind)
	}
	uid, err := strconv.ParseInt(cl.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ports.ErrTokenMalformed)
	}
	return uid, nil
}

var _ ports.TokenCodec = (*Codec)(nil)
