package runner

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
}

func TestDirectRunner_CapturesOutput(t *testing.T) {
	skipOnWindows(t)
	r := NewDirectRunner()

	res, err := r.Run(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "echo sa; echo pb; echo oops >&2"},
	})
	require.NoError(t, err)
	assert.True(t, res.Exited())
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "sa\npb\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.False(t, res.Killed)
	assert.False(t, res.Truncated)
}

func TestDirectRunner_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	res, err := NewDirectRunner().Run(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "echo Error >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Exited())
	assert.Equal(t, "Error\n", res.Stderr)
}

func TestDirectRunner_Timeout(t *testing.T) {
	skipOnWindows(t)
	r := NewDirectRunnerWithConfig(Config{DefaultTimeout: 100 * time.Millisecond})

	start := time.Now()
	res, err := r.Run(context.Background(), Command{Binary: "/bin/sh", Arguments: []string{"-c", "sleep 5"}})
	require.NoError(t, err)
	assert.True(t, res.Killed)
	assert.True(t, res.TimedOut)
	assert.Contains(t, res.KillReason, "timeout")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestDirectRunner_CommandTimeoutOverridesDefault(t *testing.T) {
	skipOnWindows(t)
	r := NewDirectRunner()
	res, err := r.Run(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "sleep 5"},
		Timeout:   50 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
}

func TestDirectRunner_Cancelled(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res, err := NewDirectRunner().Run(ctx, Command{Binary: "/bin/sh", Arguments: []string{"-c", "sleep 5"}})
	require.NoError(t, err)
	assert.True(t, res.Killed)
	assert.False(t, res.TimedOut)
	assert.Equal(t, "context canceled", res.KillReason)
}

func TestDirectRunner_Truncates(t *testing.T) {
	skipOnWindows(t)
	r := NewDirectRunnerWithConfig(Config{MaxOutputBytes: 8})
	res, err := r.Run(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "printf 'ra\\nra\\nra\\nra\\nra\\n'"},
	})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "ra\nra\nra", res.Stdout[:8])
	assert.Len(t, res.Stdout, 8)
	assert.Equal(t, int64(7), res.TruncatedBytes)
}

func TestDirectRunner_StartFailure(t *testing.T) {
	_, err := NewDirectRunner().Run(context.Background(), Command{Binary: "/definitely/not/here"})
	assert.Error(t, err)

	_, err = NewDirectRunner().Run(context.Background(), Command{})
	assert.Error(t, err)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "./push_swap", Command{Binary: "./push_swap"}.CommandString())
	assert.Equal(t, "./push_swap --simple 3 1 2",
		Command{Binary: "./push_swap", Arguments: []string{"--simple", "3", "1", "2"}}.CommandString())
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, max: 5}

	n, err := lw.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = lw.Write([]byte("defg"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = lw.Write([]byte(strings.Repeat("x", 10)))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	assert.Equal(t, "abcde", buf.String())
	assert.True(t, lw.truncated)
	assert.Equal(t, int64(12), lw.discarded)
}
