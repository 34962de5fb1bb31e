package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/quill/internal/api"
	"github.com/gravitrone/quill/internal/config"
)

func TestLoginCmdRejectsEmptyUsername(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, LoginCmd(), "\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
}

func TestLoginCmdRejectsEmptyPassword(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, LoginCmd(), "ada\n\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
}

func TestLoginCmdStoresToken(t *testing.T) {
	s := newFakeServer()
	url := serve(t, s, false)

	out, err := run(t, LoginCmd(), "ada\nsecret\n")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as ada")
	assert.Equal(t, "ada", s.form("username"))

	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.Equal(t, "ada", loaded.Username)
	assert.Equal(t, url, loaded.BaseURL, "existing base url is kept")
}

func TestLoginCmdBadPassword(t *testing.T) {
	serve(t, newFakeServer(), false)

	_, err := run(t, LoginCmd(), "ada\nwrong\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	assert.Contains(t, err.Error(), "Incorrect username or password")

	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.Token)
}

func TestRegisterCmd(t *testing.T) {
	serve(t, newFakeServer(), false)

	out, err := run(t, RegisterCmd(), "grace\ngrace@example.com\nhunter2\n")
	require.NoError(t, err)
	assert.Contains(t, out, "account grace created")

	_, err = run(t, RegisterCmd(), "taken\nt@example.com\npw\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username already registered")
}

func TestRegisterCmdRequiresEmail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, RegisterCmd(), "grace\n\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestLogoutCmdClearsToken(t *testing.T) {
	s := newFakeServer()
	serve(t, s, true)

	out, err := run(t, LogoutCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")
	assert.Contains(t, s.seen(), "POST /auth/logout")

	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.Token)
	assert.Empty(t, loaded.Username)
}

func TestLogoutCmdNotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, LogoutCmd(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

type stubSaver struct {
	calls int
	err   error
}

func (s *stubSaver) SaveAllPending(context.Context) (int, error) {
	s.calls++
	return 2, s.err
}

func TestLogoutSavesPendingFirst(t *testing.T) {
	s := newFakeServer()
	url := serve(t, s, true)
	cfg, err := config.Load()
	require.NoError(t, err)

	saver := &stubSaver{}
	client := api.NewClient(url, cfg.Token)
	require.NoError(t, Logout(context.Background(), saver, client, cfg, nil))
	assert.Equal(t, 1, saver.calls)
	assert.False(t, client.Authenticated())
	assert.Empty(t, cfg.Token)
}

func TestLogoutAbortsWhenSaveFails(t *testing.T) {
	s := newFakeServer()
	url := serve(t, s, true)
	cfg, err := config.Load()
	require.NoError(t, err)

	saver := &stubSaver{err: errors.New("offline")}
	err = Logout(context.Background(), saver, api.NewClient(url, cfg.Token), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save pending notes")
	assert.NotContains(t, s.seen(), "POST /auth/logout")

	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", loaded.Token)
}
