package client_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/pkg/client"
)

func TestSessionAuthenticationTracksAccessToken(t *testing.T) {
	session := client.NewSession(client.NewMemoryStorage())
	require.False(t, session.IsAuthenticated())

	session.SetTokens("access-1", "refresh-1")
	require.True(t, session.IsAuthenticated())
	require.Equal(t, "access-1", session.AccessToken())
	require.Equal(t, "refresh-1", session.RefreshToken())

	session.Clear()
	require.False(t, session.IsAuthenticated())
	require.Empty(t, session.AccessToken())
	require.Empty(t, session.RefreshToken())
	require.Nil(t, session.User())
}

func TestSessionKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	session := client.NewSession(client.NewMemoryStorage())
	session.SetTokens("access-1", "refresh-1")

	// A refresh response without a rotated token keeps the current one.
	session.SetTokens("access-2", "")
	require.Equal(t, "access-2", session.AccessToken())
	require.Equal(t, "refresh-1", session.RefreshToken())
}

func TestSessionPersistsToStorage(t *testing.T) {
	storage := client.NewMemoryStorage()
	session := client.NewSession(storage)

	session.SetTokens("access-1", "refresh-1")
	session.SetUser(&client.UserProfile{ID: "u-1", Email: "sales@dealer.test", Role: "sales"})

	token, ok := storage.Get(client.StorageKeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "access-1", token)

	raw, ok := storage.Get(client.StorageKeyAuthStore)
	require.True(t, ok)
	var store struct {
		User            *client.UserProfile `json:"user"`
		IsAuthenticated bool                `json:"isAuthenticated"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &store))
	require.True(t, store.IsAuthenticated)
	require.Equal(t, "sales@dealer.test", store.User.Email)

	// A fresh session over the same storage restores everything.
	restored := client.NewSession(storage)
	require.True(t, restored.IsAuthenticated())
	require.Equal(t, "access-1", restored.AccessToken())
	require.Equal(t, "refresh-1", restored.RefreshToken())
	require.Equal(t, "u-1", restored.User().ID)
}

func TestSessionClearRemovesPersistedState(t *testing.T) {
	storage := client.NewMemoryStorage()
	session := client.NewSession(storage)
	session.SetTokens("access-1", "refresh-1")

	session.Clear()

	_, ok := storage.Get(client.StorageKeyAccessToken)
	require.False(t, ok)
	_, ok = storage.Get(client.StorageKeyRefreshToken)
	require.False(t, ok)

	raw, ok := storage.Get(client.StorageKeyAuthStore)
	require.True(t, ok)
	var store struct {
		IsAuthenticated bool `json:"isAuthenticated"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &store))
	require.False(t, store.IsAuthenticated)
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	storage, err := client.NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, storage.Set(client.StorageKeyAccessToken, "access-1"))
	require.NoError(t, storage.Set(client.StorageKeyRefreshToken, "refresh-1"))
	require.NoError(t, storage.Delete(client.StorageKeyRefreshToken))

	reopened, err := client.NewFileStorage(path)
	require.NoError(t, err)

	token, ok := reopened.Get(client.StorageKeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "access-1", token)
	_, ok = reopened.Get(client.StorageKeyRefreshToken)
	require.False(t, ok)
}
