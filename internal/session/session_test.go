package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/models"
)

func signToken(t *testing.T, id string, isAdmin bool, exp time.Time) string {
	t.Helper()
	claims := Claims{
		ID:      id,
		Email:   id + "@pcshop.test",
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return token
}

type fakeAuth struct {
	token    string
	err      error
	register []models.RegisterRequest
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

func (f *fakeAuth) Register(ctx context.Context, req models.RegisterRequest) error {
	f.register = append(f.register, req)
	return f.err
}

func TestDecode(t *testing.T) {
	now := time.Now()

	s, err := Decode(signToken(t, "u1", true, now.Add(time.Hour)), now)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.True(t, s.IsAdmin)
	assert.Equal(t, Admin, s.Capability())

	_, err = Decode(signToken(t, "u1", false, now.Add(-time.Second)), now)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = Decode("not-a-jwt", now)
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = Decode(signToken(t, "", false, now.Add(time.Hour)), now)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestManagerLoginPersistsToken(t *testing.T) {
	token := signToken(t, "u1", false, time.Now().Add(time.Hour))
	store := NewMemoryStore("")
	m := NewManager(store, &fakeAuth{token: token}, nil)

	s, err := m.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, Customer, s.Capability())

	stored, _ := store.Load()
	assert.Equal(t, token, stored)
	assert.Equal(t, Customer, m.Capability())
}

func TestManagerLoginFailureKeepsNoSession(t *testing.T) {
	m := NewManager(NewMemoryStore(""), &fakeAuth{err: apperr.RejectedErr(400, "Invalid credentials")}, nil)
	_, err := m.Login(context.Background(), "a@b.c", "bad")
	assert.Error(t, err)
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestManagerLoginRejectsUndecodableToken(t *testing.T) {
	store := NewMemoryStore("")
	m := NewManager(store, &fakeAuth{token: "garbage"}, nil)
	_, err := m.Login(context.Background(), "a@b.c", "pw")
	assert.True(t, apperr.Is(err, apperr.DecodeFailure))
	stored, _ := store.Load()
	assert.Empty(t, stored)
}

func TestCurrentClearsInvalidToken(t *testing.T) {
	for name, token := range map[string]string{
		"garbage": "garbage",
		"expired": signToken(t, "u1", false, time.Now().Add(-time.Minute)),
	} {
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStore(token)
			m := NewManager(store, &fakeAuth{}, nil)

			_, ok := m.Current()
			assert.False(t, ok)
			assert.Equal(t, AnonymousView, m.Capability())
			stored, _ := store.Load()
			assert.Empty(t, stored)
		})
	}
}

func TestLogoutThenRequire(t *testing.T) {
	store := NewMemoryStore(signToken(t, "u1", false, time.Now().Add(time.Hour)))
	m := NewManager(store, &fakeAuth{}, nil)

	_, err := m.Require()
	require.NoError(t, err)

	require.NoError(t, m.Logout())
	_, err = m.Require()
	assert.True(t, apperr.Is(err, apperr.AuthRequired))
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(NewMemoryStore(""), auth, nil)
	require.NoError(t, m.Register(context.Background(), models.RegisterRequest{Email: "n@pcshop.test", Password: "pw"}))
	assert.Len(t, auth.register, 1)
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileStore(path)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStaticSource(t *testing.T) {
	assert.Equal(t, AnonymousView, CapabilityOf(Static{}))
	assert.Equal(t, Admin, CapabilityOf(Static{Session: Session{UserID: "a", IsAdmin: true}, OK: true}))
}
