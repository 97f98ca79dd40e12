package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"psv/internal/runner"
	"psv/internal/sim"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeScript drops an executable shell script into a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a Unix shell")
	}
	path := filepath.Join(t.TempDir(), "push_swap")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestText(t *testing.T) {
	ins, err := Text("sa\npb  ra\n").Instructions(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []sim.Instruction{sim.SwapA, sim.PushB, sim.RotateA}, ins)

	ins, err = Text("foo bar").Instructions(context.Background(), nil)
	assert.Nil(t, ins)
	assert.ErrorIs(t, err, ErrMalformedInstruction)
	var me *sim.MalformedInstructionError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "foo", me.Token)
	assert.Equal(t, 1, me.Position)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moves.txt")
	require.NoError(t, os.WriteFile(path, []byte("pb\npb\nrrr\npa\npa\n"), 0644))

	ins, err := File(path).Instructions(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, ins, 5)

	_, err = File(filepath.Join(dir, "missing.txt")).Instructions(context.Background(), nil)
	assert.ErrorIs(t, err, ErrFileUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("sa sx"), 0644))
	_, err = File(bad).Instructions(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMalformedInstruction)
}

func TestExecutable_PassesArgumentsAndParsesOutput(t *testing.T) {
	// echo the arguments back so the test sees exactly what was passed
	path := writeScript(t, `echo "$@" > "$(dirname "$0")/args"; printf 'sa\nrra\n'`)

	e := &Executable{Path: path, Strategy: StrategyMedium, Timeout: 5 * time.Second}
	ins, err := e.Instructions(context.Background(), sim.Sequence{2, 1, 3})
	require.NoError(t, err)
	if diff := cmp.Diff([]sim.Instruction{sim.SwapA, sim.ReverseRotateA}, ins); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}

	args, err := os.ReadFile(filepath.Join(filepath.Dir(path), "args"))
	require.NoError(t, err)
	assert.Equal(t, "--medium 2 1 3\n", string(args))
}

func TestExecutable_EmptyOutputIsEmptyList(t *testing.T) {
	path := writeScript(t, "exit 0")
	ins, err := (&Executable{Path: path}).Instructions(context.Background(), sim.Sequence{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, ins)
}

func TestExecutable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		maxOut  int64
		want    error
	}{
		{"malformed", "echo foo bar", 0, 0, ErrMalformedInstruction},
		{"non-zero exit", "echo Error >&2; exit 1", 0, 0, ErrProcessFailed},
		{"timeout", "sleep 5", 100 * time.Millisecond, 0, ErrTimeout},
		{"too much output", "i=0; while [ $i -lt 100 ]; do echo ra; i=$((i+1)); done", 0, 16, ErrOutputTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, tt.script)
			e := &Executable{Path: path, Timeout: tt.timeout, MaxOutputBytes: tt.maxOut}
			ins, err := e.Instructions(context.Background(), sim.Sequence{3, 2, 1})
			assert.Nil(t, ins)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecutable_NotFound(t *testing.T) {
	_, err := NewExecutable(filepath.Join(t.TempDir(), "nope"), StrategyDefault, 0)
	assert.ErrorIs(t, err, ErrExecutableNotFound)

	_, err = (&Executable{Path: ""}).Instructions(context.Background(), sim.Sequence{1})
	assert.ErrorIs(t, err, ErrExecutableNotFound)
}

func TestExecutable_NotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits")
	}
	path := filepath.Join(t.TempDir(), "push_swap")
	require.NoError(t, os.WriteFile(path, []byte("sa\n"), 0644))
	_, err := NewExecutable(path, StrategyDefault, 0)
	assert.ErrorIs(t, err, ErrExecutableNotFound)
}

type failingRunner struct{}

func (failingRunner) Run(context.Context, runner.Command) (*runner.Result, error) {
	return nil, errors.New("fork/exec: resource temporarily unavailable")
}

func TestExecutable_SpawnFailure(t *testing.T) {
	path := writeScript(t, "echo sa")
	e := &Executable{Path: path, Runner: failingRunner{}}
	_, err := e.Instructions(context.Background(), sim.Sequence{2, 1})
	assert.ErrorIs(t, err, ErrProcessSpawnFailed)
}

func TestExecutable_CallerCancellation(t *testing.T) {
	path := writeScript(t, "sleep 5")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := (&Executable{Path: path, Timeout: 10 * time.Second}).Instructions(ctx, sim.Sequence{2, 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{
		"":           StrategyDefault,
		"default":    StrategyDefault,
		"--simple":   StrategySimple,
		"Complex":    StrategyComplex,
		"adaptive":   StrategyAdaptive,
		" --medium ": StrategyMedium,
	}
	for in, want := range tests {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStrategy("--fast")
	assert.Error(t, err)

	assert.Equal(t, "", StrategyDefault.Flag())
	assert.Equal(t, "--adaptive", StrategyAdaptive.Flag())
	assert.Equal(t, []string{"--simple", "5", "-1"}, (&Executable{Strategy: StrategySimple}).Args(sim.Sequence{5, -1}))
}
