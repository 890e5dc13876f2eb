package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callcenter-go/internal/types"
)

var profile = types.Profile{UserID: 7, Username: "sara", Phone: "0910 111 2222", Role: types.RoleCaller}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	got, err := s.Get()
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = Require(s)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Save("tok-1", profile))
	got, err = s.Get()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, profile, got.Profile)

	sess, err := Require(s)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)

	require.NoError(t, s.Clear())
	got, err = s.Get()
	require.NoError(t, err)
	assert.Nil(t, got)

	// clearing twice is fine
	require.NoError(t, s.Clear())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(path)
	require.NoError(t, s.Save("tok", profile))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := NewFileStore(path).Get()
	assert.Error(t, err)
}

func TestRequire_EmptyToken(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Save("", profile))
	_, err := Require(s)
	assert.ErrorIs(t, err, ErrNoSession)
}
