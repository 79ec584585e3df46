package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	require.Equal(t, 1, steps)

	steps, err = parseSteps([]string{" 3 "})
	require.NoError(t, err)
	require.Equal(t, 3, steps)

	_, err = parseSteps([]string{"0"})
	require.Error(t, err)

	_, err = parseSteps([]string{"x"})
	require.Error(t, err)
}

func TestParseVersionAndTarget(t *testing.T) {
	v, err := parseVersion("1791763200")
	require.NoError(t, err)
	require.Equal(t, 1791763200, v)

	_, err = parseVersion("-1")
	require.Error(t, err)

	target, err := parseTarget("42")
	require.NoError(t, err)
	require.Equal(t, uint(42), target)

	_, err = parseTarget("-42")
	require.Error(t, err)
}

func TestResolveMigrationsDir(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveMigrationsDir("", "/does/not/exist", dir)
	require.NoError(t, err)
	require.Equal(t, dir, got)

	_, err = resolveMigrationsDir("", "/does/not/exist")
	require.Error(t, err)
}

func TestWithPreparedBinaryFlag(t *testing.T) {
	raw := "postgres://u:p@localhost:5432/kz_leaderboard?sslmode=disable"
	require.Equal(t, raw, withPreparedBinaryFlag(raw, false))
	require.True(t, strings.Contains(withPreparedBinaryFlag(raw, true), "disable_prepared_binary_result=yes"))
}

func TestRun_RequiresCommandAndDBURL(t *testing.T) {
	logger := logging.NewNop()

	require.ErrorIs(t, run(nil, logger), errUsage)

	t.Setenv("DB_URL", "")
	err := run([]string{"up"}, logger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "DB_URL")
}
