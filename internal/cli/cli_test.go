package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Driver = driver
	cfg.Revisions = testutils.RunTrackingDir(t, "../..")
	cfg.MetricsFile = filepath.Join(t.TempDir(), "strata.prom")
	switch driver {
	case "sqlite":
		cfg.DSN = filepath.Join(t.TempDir(), "strata.db")
	case "file":
		cfg.DSN = filepath.Join(t.TempDir(), "schema.json")
	}
	return cfg
}

func TestSession_UpStatusHistoryDown(t *testing.T) {
	for _, driver := range []string{"sqlite", "file"} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, driver)
			var out bytes.Buffer

			s, err := OpenSession(ctx, cfg, &out)
			require.NoError(t, err)

			require.NoError(t, s.Up(ctx, ""))
			assert.Contains(t, out.String(), "Now at 46b89d830ad8.")

			out.Reset()
			require.NoError(t, s.Status(ctx))
			assert.Contains(t, out.String(), "Up to date.")

			out.Reset()
			require.NoError(t, s.History(ctx))
			assert.Contains(t, out.String(), "| 46b89d830ad8 | b07e7b07c8ce |")

			out.Reset()
			require.NoError(t, s.Plan(ctx, "base"))
			assert.Contains(t, out.String(), "46b89d830ad8 -> <base>")

			out.Reset()
			require.NoError(t, s.Down(ctx, ""))
			assert.Contains(t, out.String(), "Now at b07e7b07c8ce.")

			out.Reset()
			require.NoError(t, s.Graph(ctx, &out))
			assert.Contains(t, out.String(), "class rev_b07e7b07c8ce current;")

			require.NoError(t, s.Close())
			metrics, err := os.ReadFile(cfg.MetricsFile)
			require.NoError(t, err)
			assert.Contains(t, string(metrics), `strata_steps_total{direction="up",status="applied"} 4`)
		})
	}
}

func TestSession_WrongDirection(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	s, err := OpenSession(ctx, testConfig(t, "memory"), &out)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Up(ctx, "3c4f"))
	err = s.Up(ctx, "base")
	assert.ErrorIs(t, err, domain.ErrWrongDirection)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestReadOnlyCommands(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "memory")
	var out bytes.Buffer

	require.NoError(t, Validate(ctx, cfg, &out))
	assert.Contains(t, out.String(), "4 revision(s), 1 head(s)")

	out.Reset()
	require.NoError(t, Heads(ctx, cfg, &out))
	assert.Equal(t, "46b89d830ad8\n", out.String())

	out.Reset()
	require.NoError(t, Graph(ctx, cfg, &out))
	assert.Contains(t, out.String(), "rev_9ba30ab3b2b4 --> rev_3c4f22db7a46")
	assert.NotContains(t, out.String(), "Overlay")

	broken := t.TempDir()
	testutils.WriteFiles(t, broken, map[string]string{
		"orphan.md": "---\nid: orphan\nparent: ghost\n---\n",
	})
	cfg.Revisions = broken
	assert.ErrorIs(t, Validate(ctx, cfg, &out), domain.ErrGraphIntegrity)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	inProgress := fmt.Errorf("up: %w", &domain.MigrationInProgressError{Key: domain.DefaultLockKey})
	assert.Equal(t, ExitInProgress, ExitCode(inProgress))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = "oracle"
	_, closeFn, err := openStore(context.Background(), cfg)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestSession_RedisLockerClosedWithSession(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	cfg := testConfig(t, "memory")
	cfg.Redis = mr.Addr()
	var out bytes.Buffer

	s, err := OpenSession(ctx, cfg, &out)
	require.NoError(t, err)
	require.NoError(t, s.Up(ctx, ""))
	assert.Contains(t, out.String(), "Now at 46b89d830ad8.")
	assert.False(t, mr.Exists("strata:lock:"+cfg.LockKey), "the lock is released after the run")
	assert.Positive(t, mr.CurrentConnectionCount())

	require.NoError(t, s.Close())
	assert.Eventually(t, func() bool { return mr.CurrentConnectionCount() == 0 },
		time.Second, 10*time.Millisecond, "closing the session closes the redis client")
}
