package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func useTempDB(t *testing.T) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "labbook.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	t.Setenv("DB_DSN", dsn)
	t.Setenv("LOG_LEVEL", "error")
}

func TestMigrateCommands(t *testing.T) {
	useTempDB(t)

	out, err := runCmd(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "version: 0, dirty: false\n", out)

	_, err = runCmd(t, "migrate", "up")
	require.NoError(t, err)

	out, err = runCmd(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "version: 3, dirty: false\n", out)

	_, err = runCmd(t, "migrate", "down")
	require.NoError(t, err)

	out, err = runCmd(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "version: 0, dirty: false\n", out)
}

func TestUserAddCommand(t *testing.T) {
	useTempDB(t)

	args := []string{
		"user", "add",
		"--email", "Ada@Example.com",
		"--first-name", "Ada",
		"--last-name", "Lovelace",
		"--password", "analytical-engine",
	}

	out, err := runCmd(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "user 1 created: ada@example.com\n", out)

	_, err = runCmd(t, args...)
	require.Error(t, err)

	_, err = runCmd(t, "user", "add", "--email", "grace@example.com")
	require.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "LABBOOK_TEST_ENV_FILE_VALUE"

	t.Cleanup(func() {
		_ = os.Unsetenv(key)
	})

	path := filepath.Join(t.TempDir(), ".env")

	err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600)
	require.NoError(t, err)

	err = loadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv(key))

	err = loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	err = loadEnvFile("")
	require.NoError(t, err)
}
