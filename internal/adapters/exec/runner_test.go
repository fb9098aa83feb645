package exec

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bft-labs/swga/internal/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestRunner_RunSuccess(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	r := NewRunner()

	err := r.Run(context.Background(), ports.Command{Path: script(t, `echo "$1" > "$2"`), Args: []string{"hello", out}})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRunner_NonZeroExitCarriesStderr(t *testing.T) {
	r := NewRunner()
	err := r.Run(context.Background(), ports.Command{Path: script(t, "echo oops >&2; exit 3")})

	var exitErr *ports.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "oops\n", exitErr.Stderr)
}

func TestRunner_StderrLimit(t *testing.T) {
	noisy := script(t, `head -c 100000 /dev/zero | tr '\0' x >&2; exit 1`)
	tests := []struct {
		name  string
		opts  []Option
		wantN int
	}{
		{"default keeps the tail", nil, DefaultStderrLimit},
		{"raised", []Option{WithStderrLimit(80000)}, 80000},
		{"unlimited", []Option{WithStderrLimit(-1)}, 100000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRunner(tt.opts...).Run(context.Background(), ports.Command{Path: noisy})

			var exitErr *ports.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Len(t, exitErr.Stderr, tt.wantN)
		})
	}
}

func TestRunner_StartStreamsStdout(t *testing.T) {
	r := NewRunner()
	p, err := r.Start(context.Background(), ports.Command{Path: script(t, `echo "3 1 4 7"; echo "2 1 4"`)})
	require.NoError(t, err)

	data, err := io.ReadAll(p.Stdout())
	require.NoError(t, err)
	assert.Equal(t, "3 1 4 7\n2 1 4\n", string(data))
	require.NoError(t, p.Wait())
	require.NoError(t, p.Wait(), "wait is idempotent")
	require.NoError(t, p.Kill(), "kill after exit is harmless")
}

func TestRunner_KillStopsProcess(t *testing.T) {
	r := NewRunner(WithWaitDelay(500 * time.Millisecond))
	p, err := r.Start(context.Background(), ports.Command{Path: script(t, "echo started; exec sleep 30")})
	require.NoError(t, err)

	buf := make([]byte, 8)
	_, err = io.ReadFull(p.Stdout(), buf)
	require.NoError(t, err)

	require.NoError(t, p.Kill())
	err = p.Wait()
	assert.Error(t, err)
}

func TestRunner_ContextCancelKills(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(WithWaitDelay(500 * time.Millisecond))
	cmd := ports.Command{Path: script(t, "exec sleep 30")}

	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, cmd)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("process not killed on cancel")
	}
}

func TestRunner_MissingExecutable(t *testing.T) {
	r := NewRunner()
	err := r.Run(context.Background(), ports.Command{Path: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 4}
	_, _ = b.Write([]byte("abcdef"))
	assert.Equal(t, "cdef", b.String())
	_, _ = b.Write([]byte("gh"))
	assert.Equal(t, "efgh", b.String())
}
