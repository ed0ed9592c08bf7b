package bridge

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/logger"
)

// fakeTransport stands in for the pseudo-terminal: reads come from a pipe the
// test writes to, writes are captured.
type fakeTransport struct {
	*io.PipeReader

	mu       sync.Mutex
	written  bytes.Buffer
	writeErr error
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.written.Write(p)
}

func (f *fakeTransport) Written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.String()
}

func startFake(t *testing.T) (*Bridge, *fakeTransport, *io.PipeWriter) {
	t.Helper()
	pr, pw := io.Pipe()
	ft := &fakeTransport{PipeReader: pr}
	b := newBridge(ft, "fake")
	b.run(ft)
	t.Cleanup(func() { _ = b.Close() })
	return b, ft, pw
}

func collect(b *Bridge, into *[]string) func() bool {
	return func() bool {
		*into = append(*into, b.PollOutput()...)
		return false
	}
}

func waitDone(t *testing.T, b *Bridge) {
	t.Helper()
	select {
	case <-b.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestReadLoopSplitsAndTrimsLines(t *testing.T) {
	b, _, pw := startFake(t)

	_, err := io.WriteString(pw, "sapf 0.1\r\n\n   \nok  \t\r\n> ")
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	waitDone(t, b)
	assert.Equal(t, []string{"sapf 0.1", "ok", ">"}, b.PollOutput())
}

func TestPollOutputPreservesOrder(t *testing.T) {
	b, _, pw := startFake(t)

	var got []string
	var want []string
	for i := 0; i < 200; i++ {
		line := strings.Repeat("x", i%7) + string(rune('a'+i%26))
		want = append(want, line)
		_, err := io.WriteString(pw, line+"\n")
		require.NoError(t, err)
		if i%13 == 0 {
			got = append(got, b.PollOutput()...)
		}
	}
	require.NoError(t, pw.Close())
	waitDone(t, b)
	got = append(got, b.PollOutput()...)

	assert.Equal(t, want, got)
}

func TestPollOutputAfterEndOfStream(t *testing.T) {
	b, _, pw := startFake(t)

	_, err := io.WriteString(pw, "one\ntwo\n")
	require.NoError(t, err)
	require.NoError(t, pw.Close())
	waitDone(t, b)

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"one", "two"}, b.PollOutput())
	assert.Empty(t, b.PollOutput())
	assert.Empty(t, b.PollOutput())

	err = b.SendLine("1 2 +")
	require.Error(t, err)
	assert.True(t, errors.IsNotConnected(err))
}

func TestPollOutputEmptyWhileIdle(t *testing.T) {
	b, _, _ := startFake(t)

	assert.Nil(t, b.PollOutput())
	assert.Equal(t, StateRunning, b.State())
}

func TestSendLine(t *testing.T) {
	b, ft, _ := startFake(t)

	require.NoError(t, b.SendLine("440 0 sinosc .1 * play"))
	require.NoError(t, b.SendLine("stop"))

	assert.Equal(t, "440 0 sinosc .1 * play\nstop\n", ft.Written())
}

func TestSendLineWriteFailureDisconnects(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Logger = prev })

	b, ft, _ := startFake(t)
	ft.writeErr = errors.New("input/output error")

	err := b.SendLine("play")
	require.Error(t, err)
	assert.True(t, errors.IsNotConnected(err))
	assert.Equal(t, StateClosed, b.State())

	err = b.SendLine("stop")
	assert.True(t, errors.IsNotConnected(err))
	assert.Equal(t, 1, logs.FilterMessage("failed to send line to interpreter").Len())
}

func TestCloseIsIdempotent(t *testing.T) {
	b, _, pw := startFake(t)
	_, err := io.WriteString(pw, "queued\n")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return b.queue.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	waitDone(t, b)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"queued"}, b.PollOutput())
	assert.True(t, errors.IsNotConnected(b.SendLine("x")))
}

func TestStatusWithoutProcess(t *testing.T) {
	b, _, _ := startFake(t)

	st := b.Status()
	assert.Equal(t, b.ID(), st.ID)
	assert.Equal(t, "fake", st.Command)
	assert.Equal(t, "running", st.State)
	assert.Equal(t, -1, st.PID)
	assert.Equal(t, -1, st.ExitCode)
	assert.Zero(t, st.RSSBytes)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestStartFailures(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unbalanced quotes", `sapf "unterminated`},
		{"missing executable", "sapfpad-no-such-interpreter-binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Start(context.Background(), Options{Command: tt.command})
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, errors.IsStartupError(err))
		})
	}
}

func TestStartMissingExecutableHasHint(t *testing.T) {
	_, err := Start(context.Background(), Options{Command: "sapfpad-no-such-interpreter-binary"})
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "interpreter.command")
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(Options{Command: "sapf"})
	assert.Equal(t, 24, opts.Rows)
	assert.Equal(t, 80, opts.Cols)
	assert.Equal(t, "xterm", opts.Term)
	assert.Zero(t, opts.SettleDelay)

	opts = withDefaults(Options{Command: "sapf", Rows: 50, Cols: 120, Term: "dumb"})
	assert.Equal(t, 50, opts.Rows)
	assert.Equal(t, 120, opts.Cols)
	assert.Equal(t, "dumb", opts.Term)
}

func startReal(t *testing.T, command string) *Bridge {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("pseudo-terminal tests need a unix pty")
	}

	b, err := Start(context.Background(), Options{Command: command})
	if err != nil {
		t.Skipf("cannot start %q on a pseudo-terminal: %v", command, err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestStartEchoesThroughPseudoTerminal(t *testing.T) {
	b := startReal(t, "cat")

	assert.Equal(t, StateRunning, b.State())
	assert.Greater(t, b.PID(), 0)

	require.NoError(t, b.SendLine("hello interpreter"))

	var got []string
	require.Eventually(t, func() bool {
		collect(b, &got)()
		for _, line := range got {
			if line == "hello interpreter" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	st := b.Status()
	assert.Equal(t, "running", st.State)
	assert.Equal(t, b.PID(), st.PID)

	require.NoError(t, b.Close())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, errors.IsNotConnected(b.SendLine("again")))
}

func TestStartReadsChildOutput(t *testing.T) {
	b := startReal(t, `sh -c "echo one; echo two; sleep 2"`)

	var got []string
	require.Eventually(t, func() bool {
		collect(b, &got)()
		return len(got) >= 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, []string{"one", "two"}, got[:2])
}

func TestStartSettleDelayHonoursContext(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pseudo-terminal tests need a unix pty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := Start(ctx, Options{Command: "cat", SettleDelay: time.Minute})
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Skipf("cannot start cat on a pseudo-terminal: %v", err)
	}
	require.Error(t, err)
	assert.Nil(t, b)
	assert.True(t, errors.IsStartupError(err))
}
