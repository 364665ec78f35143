// Package auth mints short lived bearer tokens for the transport handshake.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/infigaming-com/go-stomp/errors"
)

const (
	AuthorizationHeader = "Authorization"
	defaultTTL          = 5 * time.Minute
)

type options struct {
	subject  string
	issuer   string
	audience []string
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*options)

func WithSubject(subject string) Option {
	return func(o *options) { o.subject = subject }
}

func WithIssuer(issuer string) Option {
	return func(o *options) { o.issuer = issuer }
}

func WithAudience(audience ...string) Option {
	return func(o *options) { o.audience = audience }
}

func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// TokenSource signs HS256 tokens. A fresh token is minted for every call so a
// reconnect never presents an expired one.
type TokenSource struct {
	secret []byte
	opts   options
}

func NewTokenSource(secret []byte, opts ...Option) (*TokenSource, error) {
	if len(secret) == 0 {
		return nil, errors.NewError(errors.CodeInvalidArgument, "auth: secret is required", nil)
	}
	o := options{ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TokenSource{secret: secret, opts: o}, nil
}

func (s *TokenSource) Token() (string, error) {
	now := s.opts.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   s.opts.subject,
		Issuer:    s.opts.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.ttl)),
	}
	if len(s.opts.audience) > 0 {
		claims.Audience = jwt.ClaimStrings(s.opts.audience)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.NewError(errors.CodeInvalidArgument, "auth: failed to sign token", err)
	}
	return signed, nil
}

// HandshakeHeaders matches the signature of stomp.WithHandshakeHeaderFunc.
func (s *TokenSource) HandshakeHeaders(context.Context) (map[string]string, error) {
	token, err := s.Token()
	if err != nil {
		return nil, err
	}
	return map[string]string{AuthorizationHeader: "Bearer " + token}, nil
}
