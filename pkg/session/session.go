// Package session issues and checks the bearer tokens of signed-in users.
// A user holds at most one active session: signing in again ends the previous one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

const (
	DefaultTTL = 12 * time.Hour
	issuer     = "ward-alert-service"
)

var ErrInvalidSession = errors.New("invalid or expired session")

// Identity is who signed in. WardID is empty for the super admin; BedID is
// set for patients only.
type Identity struct {
	Role        models.Role `json:"role"`
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	WardID      string      `json:"ward_id,omitempty"`
	BedID       string      `json:"bed_id,omitempty"`
}

type Session struct {
	Identity
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

type Claims struct {
	Role   models.Role `json:"role"`
	Name   string      `json:"name"`
	WardID string      `json:"ward_id,omitempty"`
	BedID  string      `json:"bed_id,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	active map[string]string // role:user -> jti
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		logger: common.GetLoggerWith(common.LoggerNameSession),
		active: map[string]string{},
	}
}

func userKey(role models.Role, userID string) string {
	return string(role) + ":" + userID
}

func (m *Manager) Login(id Identity) (*Session, error) {
	now := time.Now()
	expires := now.Add(m.ttl)
	jti := uuid.NewString()

	claims := &Claims{
		Role:   id.Role,
		Name:   id.DisplayName,
		WardID: id.WardID,
		BedID:  id.BedID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   id.UserID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	m.mu.Lock()
	m.active[userKey(id.Role, id.UserID)] = jti
	m.mu.Unlock()

	m.logger.Info("Session started", zap.String("role", string(id.Role)), zap.String("user_id", id.UserID))
	return &Session{Identity: id, Token: token, ExpiresAt: expires.UTC()}, nil
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Authenticate accepts a token only while it is its user's latest session.
func (m *Manager) Authenticate(token string) (*Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	current := m.active[userKey(claims.Role, claims.Subject)]
	m.mu.Unlock()
	if current != claims.ID {
		return nil, ErrInvalidSession
	}

	return &Session{
		Identity: Identity{
			Role:        claims.Role,
			UserID:      claims.Subject,
			DisplayName: claims.Name,
			WardID:      claims.WardID,
			BedID:       claims.BedID,
		},
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (m *Manager) Logout(token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := userKey(claims.Role, claims.Subject)
	if m.active[key] != claims.ID {
		return ErrInvalidSession
	}
	delete(m.active, key)

	m.logger.Info("Session ended", zap.String("role", string(claims.Role)), zap.String("user_id", claims.Subject))
	return nil
}

// Revoke ends whatever session the user holds, as when a patient leaves the bed.
func (m *Manager) Revoke(role models.Role, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userKey(role, userID)
	if _, ok := m.active[key]; !ok {
		return
	}
	delete(m.active, key)

	m.logger.Info("Session revoked", zap.String("role", string(role)), zap.String("user_id", userID))
}

type contextKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
