package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	_ "liyu1981.xyz/ward-alert-service/pkg/testing"
)

func TestLoginAuthenticateLogout(t *testing.T) {
	common.SetTestLoggerNop()
	m := NewManager("secret", time.Hour)

	s, err := m.Login(Identity{Role: models.RoleNurse, UserID: "n1", DisplayName: "Ana", WardID: "w1"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	got, err := m.Authenticate(s.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNurse, got.Role)
	assert.Equal(t, "n1", got.UserID)
	assert.Equal(t, "Ana", got.DisplayName)
	assert.Equal(t, "w1", got.WardID)
	assert.True(t, got.HasRole(models.RoleWardAdmin, models.RoleNurse))
	assert.False(t, got.HasRole(models.RoleSuperadmin))

	require.NoError(t, m.Logout(s.Token))
	_, err = m.Authenticate(s.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, m.Logout(s.Token), ErrInvalidSession)
}

func TestNewLoginReplacesPreviousSession(t *testing.T) {
	common.SetTestLoggerNop()
	m := NewManager("secret", time.Hour)

	first, err := m.Login(Identity{Role: models.RolePatient, UserID: "p1", BedID: "101"})
	require.NoError(t, err)
	second, err := m.Login(Identity{Role: models.RolePatient, UserID: "p1", BedID: "101"})
	require.NoError(t, err)

	_, err = m.Authenticate(first.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	got, err := m.Authenticate(second.Token)
	require.NoError(t, err)
	assert.Equal(t, "101", got.BedID)

	other, err := m.Login(Identity{Role: models.RolePatient, UserID: "p2"})
	require.NoError(t, err)
	_, err = m.Authenticate(other.Token)
	assert.NoError(t, err)
	_, err = m.Authenticate(second.Token)
	assert.NoError(t, err, "other users keep their sessions")
}

func TestRevokeEndsUserSession(t *testing.T) {
	common.SetTestLoggerNop()
	m := NewManager("secret", time.Hour)

	patient, err := m.Login(Identity{Role: models.RolePatient, UserID: "p1", BedID: "101"})
	require.NoError(t, err)
	nurse, err := m.Login(Identity{Role: models.RoleNurse, UserID: "p1"})
	require.NoError(t, err)

	m.Revoke(models.RolePatient, "p1")
	m.Revoke(models.RolePatient, "nobody")

	_, err = m.Authenticate(patient.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = m.Authenticate(nurse.Token)
	assert.NoError(t, err)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	common.SetTestLoggerNop()
	m := NewManager("secret", time.Hour)

	s, err := m.Login(Identity{Role: models.RoleSuperadmin, UserID: "root"})
	require.NoError(t, err)

	_, err = NewManager("other-secret", time.Hour).Authenticate(s.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = m.Authenticate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidSession)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: models.RoleSuperadmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Authenticate(none)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestExpiredSession(t *testing.T) {
	common.SetTestLoggerNop()
	m := NewManager("secret", time.Hour)
	m.ttl = -time.Minute

	s, err := m.Login(Identity{Role: models.RoleNurse, UserID: "n1"})
	require.NoError(t, err)

	_, err = m.Authenticate(s.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Session{Identity: Identity{Role: models.RoleNurse, UserID: "n1"}}
	got, ok := FromContext(WithContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
