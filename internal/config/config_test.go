package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, "data/wanderlust.db", cfg.Database.Path)
	require.Empty(t, cfg.Session.Secret)
	require.Equal(t, "/auth/google/callback", cfg.Google.CallbackURL)
	require.Equal(t, "listing-images", cfg.Storage.KeyPrefix)
	require.Equal(t, "us-east-1", cfg.Storage.Region)
	require.Empty(t, cfg.Storage.Bucket)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WANDERLUST_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("WANDERLUST_DATABASE_PATH", "/tmp/w.db")
	t.Setenv("WANDERLUST_SESSION_SECRET", "hunter2hunter2")
	t.Setenv("WANDERLUST_GOOGLE_CLIENTID", "cid")
	t.Setenv("WANDERLUST_STORAGE_BUCKET", "wanderlust-images")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	require.Equal(t, "/tmp/w.db", cfg.Database.Path)
	require.Equal(t, "hunter2hunter2", cfg.Session.Secret)
	require.Equal(t, "cid", cfg.Google.ClientID)
	require.Equal(t, "wanderlust-images", cfg.Storage.Bucket)
}
