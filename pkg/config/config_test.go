package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a, ,b ,"))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GS_TEST_INT", "42")
	t.Setenv("GS_TEST_BAD_INT", "x")
	t.Setenv("GS_TEST_BOOL", "true")
	t.Setenv("GS_TEST_DUR", "3s")
	t.Setenv("GS_TEST_LIST", "PC, Xbox One")

	assert.Equal(t, 42, EnvIntDefault("GS_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("GS_TEST_BAD_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("GS_TEST_MISSING", 7))
	assert.True(t, EnvBoolDefault("GS_TEST_BOOL", false))
	assert.True(t, EnvBoolDefault("GS_TEST_MISSING", true))
	assert.Equal(t, 3*time.Second, EnvDurationDefault("GS_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvDurationDefault("GS_TEST_MISSING", time.Second))
	assert.Equal(t, []string{"PC", "Xbox One"}, EnvCSVDefault("GS_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, EnvCSVDefault("GS_TEST_MISSING", []string{"x"}))
	assert.Equal(t, "def", EnvDefault("GS_TEST_MISSING", "def"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GS_DOTENV_VALUE=from-file\n"), 0o600))

	t.Setenv("GS_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("GS_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("GS_DOTENV_VALUE"))
}

func TestNonEmpty(t *testing.T) {
	require.NoError(t, NonEmpty("x", "SOME_ENV"))
	require.NoError(t, NonEmptyBytes([]byte("x"), "SOME_ENV"))

	err := NonEmpty("", "TELEGRAM_BOT_TOKEN")
	require.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	err = NonEmptyBytes(nil, "JWT_SECRET")
	require.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
