// Package exec runs the external k-mer counter and set enumerator.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"sync"
	"time"

	"github.com/bft-labs/swga/internal/ports"
)

var _ ports.CommandRunner = (*Runner)(nil)

const defaultWaitDelay = 2 * time.Second

// DefaultStderrLimit is the captured stderr size unless WithStderrLimit
// says otherwise.
const DefaultStderrLimit = 64 * 1024

// Runner starts processes with os/exec.
type Runner struct {
	waitDelay   time.Duration
	stderrLimit int
}

// Option configures a Runner.
type Option func(*Runner)

// WithWaitDelay bounds how long Wait blocks on output pipes after the
// process is killed.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// WithStderrLimit caps the captured stderr in bytes. The tail is kept.
// n <= 0 keeps everything.
func WithStderrLimit(n int) Option {
	return func(r *Runner) {
		r.stderrLimit = n
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{waitDelay: defaultWaitDelay, stderrLimit: DefaultStderrLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts cmd, discards stdout and waits for it to exit.
func (r *Runner) Run(ctx context.Context, cmd ports.Command) error {
	p, err := r.start(ctx, cmd, false)
	if err != nil {
		return err
	}
	return p.Wait()
}

// Start starts cmd with stdout available for streaming. The caller must
// drain Stdout and then call Wait, or call Kill and then Wait.
func (r *Runner) Start(ctx context.Context, cmd ports.Command) (ports.Process, error) {
	return r.start(ctx, cmd, true)
}

func (r *Runner) start(ctx context.Context, cmd ports.Command, pipe bool) (*process, error) {
	c := osexec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = r.waitDelay

	p := &process{cmd: c, name: cmd.String(), stderr: &tailBuffer{limit: r.stderrLimit}}
	c.Stderr = p.stderr

	if pipe {
		out, err := c.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("exec: %s: %w", p.name, err)
		}
		p.stdout = out
	} else {
		c.Stdout = io.Discard
	}

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("exec: start %s: %w", p.name, err)
	}
	return p, nil
}

type process struct {
	cmd    *osexec.Cmd
	name   string
	stdout io.Reader
	stderr *tailBuffer

	waitOnce sync.Once
	waitErr  error
}

func (p *process) Stdout() io.Reader {
	if p.stdout == nil {
		return bytes.NewReader(nil)
	}
	return p.stdout
}

func (p *process) Stderr() string {
	return p.stderr.String()
}

func (p *process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *process) Wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		var exitErr *osexec.ExitError
		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			p.waitErr = &ports.ExitError{
				Command: p.name,
				Code:    exitErr.ExitCode(),
				Stderr:  p.stderr.String(),
			}
		default:
			p.waitErr = fmt.Errorf("exec: wait %s: %w", p.name, err)
		}
	})
	return p.waitErr
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if b.limit > 0 && len(b.buf) > b.limit {
		b.buf = append(b.buf[:0], b.buf[len(b.buf)-b.limit:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
