package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/config"
)

func exercise(t *testing.T, store PreferenceStore) {
	t.Helper()
	ctx := context.Background()

	theme, err := store.Theme(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, ThemeLight, theme)

	require.NoError(t, store.SetTheme(ctx, "42", ThemeDark))
	require.NoError(t, store.SetTheme(ctx, "7", ThemeLight))

	theme, err = store.Theme(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, ThemeDark, theme)

	theme, err = store.Theme(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, ThemeLight, theme)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "preferences.json")
	exercise(t, NewFileStore(path))

	reopened := NewFileStore(path)
	theme, err := reopened.Theme(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, ThemeDark, theme)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Theme(context.Background(), "42")
	require.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr())
	require.NoError(t, err)
	defer client.Close()

	exercise(t, NewRedisStore(client))
	value, err := server.Get(themeKeyPrefix + "42")
	require.NoError(t, err)
	require.Equal(t, "dark", value)
}

func TestRedisStoreIgnoresUnknownValue(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()
	require.NoError(t, server.Set(themeKeyPrefix+"1", "sepia"))

	theme, err := NewRedisStore(client).Theme(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, ThemeLight, theme)
}

func TestConnectRedisRequiresURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "")
	require.Error(t, err)
}

func TestParseAndToggleTheme(t *testing.T) {
	theme, err := ParseTheme(" Dark ")
	require.NoError(t, err)
	require.Equal(t, ThemeDark, theme)
	require.Equal(t, ThemeLight, theme.Toggle())
	require.Equal(t, ThemeDark, ThemeLight.Toggle())

	_, err = ParseTheme("blue")
	require.Error(t, err)
}

func TestOpenSelectsBackend(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	store, closeFn, err := Open(context.Background(), config.StorageConfig{
		Backend:  config.StorageRedis,
		RedisURL: "redis://" + server.Addr(),
	})
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, &RedisStore{}, store)

	store, _, err = Open(context.Background(), config.StorageConfig{
		Backend:         config.StorageFile,
		PreferencesFile: filepath.Join(t.TempDir(), "p.json"),
	})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
}
