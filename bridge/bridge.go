// Package bridge runs a line-oriented interpreter behind a pseudo-terminal.
//
// A background goroutine splits the interpreter's output into lines and
// queues them; PollOutput drains the queue without blocking. SendLine writes
// one line of input. Once the output stream ends, or a write fails, the
// bridge is Closed for good: queued lines can still be drained, and further
// sends report ErrNotConnected.
package bridge

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/x/xpty"
	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/logger"
)

// State is the lifecycle stage of a Bridge.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures Start.
type Options struct {
	// Command is the interpreter command line, split with shell quoting rules.
	Command string

	// Rows and Cols size the pseudo-terminal (default 24x80).
	Rows int
	Cols int

	// Term is exported to the child as TERM (default "xterm").
	Term string

	// SettleDelay is waited out after spawning so the interpreter can print
	// its banner before the first line is sent.
	SettleDelay time.Duration

	// Env is appended to the current environment.
	Env []string

	// Dir is the child's working directory.
	Dir string
}

// DefaultOptions returns the options used for the sapf interpreter.
func DefaultOptions() Options {
	return Options{
		Command:     "sapf",
		Rows:        24,
		Cols:        80,
		Term:        "xterm",
		SettleDelay: time.Second,
	}
}

// Bridge owns the interpreter's pseudo-terminal.
type Bridge struct {
	id      string
	command string

	rw  io.ReadWriteCloser
	w   *bufio.Writer
	cmd *exec.Cmd

	queue    lineQueue
	state    atomic.Int32
	closing  atomic.Bool
	exitCode atomic.Int32
	done     chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once

	logger *zap.SugaredLogger
}

// Start allocates a pseudo-terminal, spawns the interpreter on it and starts
// the reader goroutine. All failures are marked with errors.ErrStartup.
func Start(ctx context.Context, opts Options) (*Bridge, error) {
	opts = withDefaults(opts)

	argv, err := shellquote.Split(opts.Command)
	if err != nil {
		return nil, errors.WrapStartup(err, "failed to parse interpreter command")
	}
	if len(argv) == 0 {
		return nil, errors.WrapStartup(errors.NewInvalidRequestError("interpreter command is empty"), "failed to parse interpreter command")
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		err = errors.WrapStartup(err, "failed to locate interpreter")
		return nil, errors.WithHintf(err, "is %s installed and on PATH? (config key interpreter.command)", argv[0])
	}

	p, err := xpty.NewPty(opts.Cols, opts.Rows)
	if err != nil {
		return nil, errors.WrapStartup(err, "failed to allocate pseudo-terminal")
	}

	cmd := exec.Command(path, argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.Env = append(cmd.Env, "TERM="+opts.Term)

	if err := p.Start(cmd); err != nil {
		_ = p.Close()
		return nil, errors.WrapStartup(err, "failed to spawn interpreter")
	}

	// The parent's copy of the slave side must go, or the reader never sees
	// end of stream when the child exits.
	if s, ok := p.(interface{ Slave() *os.File }); ok && s.Slave() != nil {
		_ = s.Slave().Close()
	}

	b := newBridge(p, opts.Command)
	b.cmd = cmd
	b.run(p)
	go b.reap()

	b.logger.Infow("interpreter started",
		logger.FieldCommand, opts.Command,
		logger.FieldPID, cmd.Process.Pid)

	if opts.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			_ = b.Close()
			return nil, errors.WrapStartup(ctx.Err(), "interrupted while waiting for interpreter to settle")
		case <-time.After(opts.SettleDelay):
		}
	}

	return b, nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Rows <= 0 {
		opts.Rows = def.Rows
	}
	if opts.Cols <= 0 {
		opts.Cols = def.Cols
	}
	if opts.Term == "" {
		opts.Term = def.Term
	}
	return opts
}

// newBridge wraps an already-connected transport. The caller must call run.
func newBridge(rw io.ReadWriteCloser, command string) *Bridge {
	id := uuid.New().String()
	b := &Bridge{
		id:      id,
		command: command,
		rw:      rw,
		w:       bufio.NewWriter(rw),
		done:    make(chan struct{}),
		logger:  logger.ComponentLogger("bridge").With(logger.FieldBridgeID, id),
	}
	b.exitCode.Store(-1)
	return b
}

func (b *Bridge) run(r io.Reader) {
	b.state.Store(int32(StateRunning))
	go b.readLoop(r)
}

// readLoop publishes each non-blank output line, trailing whitespace removed,
// until the stream ends. A final unterminated line is published too.
func (b *Bridge) readLoop(r io.Reader) {
	defer close(b.done)

	reader := bufio.NewReader(r)
	count := 0
	for {
		line, err := reader.ReadString('\n')
		if text := strings.TrimRight(line, " \t\r\n"); text != "" {
			b.queue.Push(text)
			count++
		}

		if err != nil {
			switch {
			case b.closing.Load() || isEndOfStream(err):
				b.logger.Debugw("interpreter output ended", logger.FieldCount, count)
			default:
				b.logger.Warnw("interpreter output read failed",
					logger.FieldError, err,
					logger.FieldCount, count)
			}
			break
		}
	}

	b.state.Store(int32(StateClosed))
}

// isEndOfStream reports errors that mean the other side went away. Linux
// reports a pseudo-terminal whose child exited as EIO rather than EOF.
func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EIO)
}

func (b *Bridge) reap() {
	err := b.cmd.Wait()
	if b.cmd.ProcessState != nil {
		b.exitCode.Store(int32(b.cmd.ProcessState.ExitCode()))
	}
	if err != nil && !b.closing.Load() {
		b.logger.Infow("interpreter exited", logger.FieldError, err)
		return
	}
	b.logger.Debugw("interpreter exited", "exit_code", b.exitCode.Load())
}

// SendLine writes text followed by a newline and flushes it.
// It returns errors.ErrNotConnected when the bridge is not running. A failed
// write closes the bridge and returns ErrNotConnected with the write error
// attached.
func (b *Bridge) SendLine(text string) error {
	if b.State() != StateRunning {
		return errors.ErrNotConnected
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	_, err := b.w.WriteString(text + "\n")
	if err == nil {
		err = b.w.Flush()
	}
	if err != nil {
		b.logger.Warnw("failed to send line to interpreter",
			logger.FieldLine, text,
			logger.FieldError, err)
		b.state.Store(int32(StateClosed))
		return errors.WithSecondaryError(errors.ErrNotConnected, err)
	}

	b.logger.Debugw("sent line", logger.FieldLine, text)
	return nil
}

// PollOutput returns the lines read since the previous call, in the order
// they were read. It never blocks and returns nil when nothing is pending.
func (b *Bridge) PollOutput() []string {
	return b.queue.Drain()
}

// Close kills the interpreter, releases the pseudo-terminal and waits for the
// reader goroutine. Lines read before Close remain available to PollOutput.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.closing.Store(true)
		b.state.Store(int32(StateClosed))

		if b.cmd != nil && b.cmd.Process != nil {
			_ = b.cmd.Process.Kill()
		}
		if cerr := b.rw.Close(); cerr != nil && !isEndOfStream(cerr) {
			err = errors.Wrap(cerr, "failed to close pseudo-terminal")
		}
		<-b.done
	})
	return err
}

// Done is closed when the reader goroutine has stopped.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// ID uniquely identifies this bridge in logs.
func (b *Bridge) ID() string {
	return b.id
}

// State returns the current lifecycle stage.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// PID returns the interpreter's process id, or -1 if there is no process.
func (b *Bridge) PID() int {
	if b.cmd == nil || b.cmd.Process == nil {
		return -1
	}
	return b.cmd.Process.Pid
}

// ExitCode returns the interpreter's exit code, or -1 while it runs.
func (b *Bridge) ExitCode() int {
	return int(b.exitCode.Load())
}
