package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, domain.WaitPolicy{Timeout: domain.DefaultLockTimeout}, cfg.WaitPolicy())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: postgres
dsn: postgres://localhost/strata
revisions: db/revisions
lock_timeout: 30s
default_head: 46b89d830ad8
`), 0o644))

	t.Setenv("STRATA_DSN", "postgres://db:5432/prod")
	t.Setenv("STRATA_BLOCK", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://db:5432/prod", cfg.DSN, "env overrides the file")
	assert.Equal(t, "db/revisions", cfg.Revisions)
	assert.Equal(t, 30*time.Second, cfg.LockTimeout)
	assert.Equal(t, "46b89d830ad8", cfg.DefaultHead)
	assert.True(t, cfg.WaitPolicy().Block)
	assert.Equal(t, domain.DefaultLockKey, cfg.LockKey, "unset keys keep their defaults")
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(config.DefaultFile, []byte("driver: file\ndsn: state.json\n"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Driver)
	assert.Equal(t, "state.json", cfg.DSN)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: [unclosed"), 0o644))
	_, err = config.Load(path)
	assert.ErrorContains(t, err, "failed to parse")

	t.Setenv("STRATA_LOCK_TIMEOUT", "soon")
	chdir(t, t.TempDir())
	_, err = config.Load("")
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = "oracle"
	assert.ErrorContains(t, cfg.Validate(), "unknown driver")

	cfg = config.Default()
	cfg.DSN = ""
	assert.ErrorContains(t, cfg.Validate(), "requires a dsn")

	cfg.Driver = "memory"
	assert.NoError(t, cfg.Validate())

	cfg.LockTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}
