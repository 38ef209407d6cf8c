package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankfeed.yaml")

	cfg := Default("alice")
	cfg.Import.TimeZone = "Europe/Riga"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.User)
	assert.Equal(t, "bankfeed.db", loaded.Database.Path)
	assert.Equal(t, "Europe/Riga", loaded.Import.TimeZone)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankfeed.yaml")
	require.NoError(t, Save(path, Default("alice")))

	t.Setenv("BANKFEED_DB_PATH", "/var/lib/bankfeed/ledger.db")
	t.Setenv("BANKFEED_USER", "bob")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/bankfeed/ledger.db", loaded.Database.Path)
	assert.Equal(t, "bob", loaded.User)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := Default("alice")
	cfg.Import.TimeZone = "Europe/Riga"
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Riga", loc.String())

	cfg.Import.TimeZone = ""
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Import.TimeZone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
