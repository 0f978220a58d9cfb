package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSession is returned when a bearer token is missing, expired or forged.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNoSecret is returned when signing is attempted without a configured secret.
	ErrNoSecret = errors.New("session secret is not configured")
)

// Session is the authenticated caller. It is created once at the HTTP
// boundary and handed to whatever needs it; nothing reads it from globals.
type Session struct {
	Token     string    `json:"-"`
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and loads sessions signed with an HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager. A zero ttl defaults to 12 hours.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured.
func (m *Manager) Enabled() bool {
	return m != nil && len(m.secret) > 0
}

// Issue signs a new session for subject.
func (m *Manager) Issue(subject, role string) (*Session, error) {
	if !m.Enabled() {
		return nil, ErrNoSecret
	}

	now := m.now()
	exp := now.Add(m.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return &Session{
		Token:     signed,
		Subject:   subject,
		Role:      role,
		ExpiresAt: exp.Truncate(time.Second),
	}, nil
}

// Load validates a raw token or an "Authorization: Bearer" header value.
func (m *Manager) Load(raw string) (*Session, error) {
	if !m.Enabled() {
		return nil, ErrNoSecret
	}

	token := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = strings.TrimSpace(after)
	}
	if token == "" {
		return nil, ErrInvalidSession
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	s := &Session{
		Token:   token,
		Subject: c.Subject,
		Role:    c.Role,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
