package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/players")
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "database.db", cfg.DatabaseName)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, "0 6 * * *", cfg.RotationCron)
	assert.False(t, cfg.LockEnabled)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/players")
	t.Setenv("API_KEY", "secret")
	t.Setenv("DATABASE_NAME", "/tmp/players.db")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/players.db", cfg.DatabaseName)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.Error(t, err, "API_URL and API_KEY are required")
}

func TestValidate(t *testing.T) {
	base := Config{
		APIURL:       "https://api.example.com",
		APIKey:       "k",
		APITimeout:   time.Second,
		DatabaseName: "database.db",
	}
	require.NoError(t, base.Validate())

	blankKey := base
	blankKey.APIKey = "   "
	assert.Error(t, blankKey.Validate())

	noTTL := base
	noTTL.LockEnabled = true
	assert.Error(t, noTTL.Validate())

	noDB := base
	noDB.DatabaseName = ""
	assert.Error(t, noDB.Validate())
}

func TestMustLoad_ReportsToWriter(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("API_KEY", "")

	var out bytes.Buffer
	code := -1
	cfg := mustLoad(&out, func(c int) { code = c })

	assert.Nil(t, cfg)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `"level":"error"`)
	assert.Contains(t, out.String(), "Failed to load configuration")
}

func TestMustLoad_Success(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/players")
	t.Setenv("API_KEY", "secret")

	var out bytes.Buffer
	exited := false
	cfg := mustLoad(&out, func(int) { exited = true })

	require.NotNil(t, cfg)
	assert.False(t, exited)
	assert.Empty(t, out.String())
}
