package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/bitacora/internal/client/client"
	"github.com/dmitrijs2005/bitacora/internal/client/fakeapi"
	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success_CommitsSession(t *testing.T) {
	fc := &fakeClient{ObtainTokenRet: "tok", CurrentUserRet: &models.User{ID: 4, Username: "ana", IsStaff: true}}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, nil)

	require.NoError(t, svc.Login(context.Background(), "ana", []byte("secret")))

	assert.Equal(t, "ana", fc.LastUser)
	assert.Equal(t, "secret", fc.LastPassword)
	assert.Equal(t, "tok", fc.LastToken, "profile must be loaded with the new token")
	assert.Equal(t, 1, fs.Commits)
	assert.Equal(t, "tok", fs.LastToken)
	assert.EqualValues(t, 4, fs.LastUserID)
}

func TestLogin_TokenExchangeFails(t *testing.T) {
	fc := &fakeClient{ObtainTokenErr: client.ErrInvalidCredentials}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, nil)

	err := svc.Login(context.Background(), "ana", []byte("bad"))
	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Zero(t, fs.Commits)
	assert.Empty(t, fc.LastToken, "current user must not be requested")
}

func TestLogin_CurrentUserFails(t *testing.T) {
	fc := &fakeClient{ObtainTokenRet: "tok", CurrentUserErr: client.ErrUnavailable}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, nil)

	err := svc.Login(context.Background(), "ana", []byte("pw"))
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Zero(t, fs.Commits)
}

func TestLogin_CommitFails(t *testing.T) {
	fc := &fakeClient{ObtainTokenRet: "tok", CurrentUserRet: &models.User{ID: 1}}
	fs := &fakeSession{CommitErr: errors.New("disk full")}
	svc := NewAuthService(fc, fs, nil)

	err := svc.Login(context.Background(), "ana", []byte("pw"))
	require.ErrorContains(t, err, "disk full")
}

func TestLogin_PanicBecomesError(t *testing.T) {
	fc := &fakeClient{ObtainTokenRet: "tok", CurrentUserFn: func() { panic("boom") }}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, nil)

	var err error
	require.NotPanics(t, func() { err = svc.Login(context.Background(), "ana", []byte("pw")) })
	require.ErrorContains(t, err, "boom")
	assert.Zero(t, fs.Commits)
}

func TestLogout_ClearsSession(t *testing.T) {
	fs := &fakeSession{}
	svc := NewAuthService(&fakeClient{}, fs, nil)

	require.NoError(t, svc.Logout(context.Background()))
	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 2, fs.Clears)
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return session.NewStore(db, nil)
}

func TestLogin_AgainstServer_FailureKeepsPreviousSession(t *testing.T) {
	api := fakeapi.New()
	defer api.Close()
	api.AddUser("ana", "pw", true)
	api.AddUser("beto", "pw2", false)

	store := newStore(t)
	rest := client.NewRESTClient(api.URL, store, nil)
	svc := NewAuthService(rest, store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "ana", []byte("pw")))
	require.True(t, store.IsAdmin())
	before := store.Token()

	err := svc.Login(ctx, "beto", []byte("wrong"))
	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, before, store.Token())
	assert.True(t, store.IsAdmin())
	assert.Equal(t, "ana", store.User().Username)

	require.NoError(t, svc.Login(ctx, "beto", []byte("pw2")))
	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.IsAdmin())

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, store.IsAuthenticated())
}
