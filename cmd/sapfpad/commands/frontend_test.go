package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/sapfpad/am"
	"github.com/teranos/sapfpad/bridge"
	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/session"
	"github.com/teranos/sapfpad/workspace"
)

func newTestFrontend(t *testing.T, interp session.Interpreter, opts ...session.Option) (*frontend, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	sess := session.New(testDictionary(t), interp, opts...)
	f := newFrontend(&out, sess, workspace.New())
	f.now = func() time.Time { return time.Date(2024, 3, 9, 17, 4, 59, 0, time.UTC) }
	return f, &out
}

func TestHandlePlainLineAppendsAndSends(t *testing.T) {
	interp := &fakeInterpreter{}
	f, _ := newTestFrontend(t, interp)

	assert.False(t, f.handle("1 2 +"))
	assert.False(t, f.handle("440 0 sinosc play\r\n"))

	assert.Equal(t, []string{"1 2 +", "440 0 sinosc play"}, interp.Sent())
	assert.Equal(t, "1 2 +\n440 0 sinosc play", f.ws.Current().Content)
	assert.True(t, f.ws.Current().Modified)
}

func TestHandleBlankLineIsNotSent(t *testing.T) {
	interp := &fakeInterpreter{}
	f, _ := newTestFrontend(t, interp)

	f.handle("   ")
	assert.Empty(t, interp.Sent())
}

func TestHandleQuit(t *testing.T) {
	f, _ := newTestFrontend(t, &fakeInterpreter{})
	assert.True(t, f.handle(":quit"))
	assert.True(t, f.handle(":q"))
}

func TestHandleComplete(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{}, session.WithMaxVisible(2))

	f.handle(":complete osc.s")
	assert.Contains(t, out.String(), "saw")
	assert.Contains(t, out.String(), "sawtooth generator")
	assert.Contains(t, out.String(), "sine")
	assert.NotContains(t, out.String(), "square generator")
	assert.Contains(t, out.String(), "... 1 more")

	out.Reset()
	f.handle(":complete zzz")
	assert.Contains(t, out.String(), "No completions")
}

func TestHandleCompleteUsesCursor(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{})
	f.ws.SetContent("1 ad")
	f.ws.SetCursor(4)

	f.handle(":complete")
	assert.Contains(t, out.String(), "addition")
	assert.NotContains(t, out.String(), "oscillators")
}

func TestHandleHover(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{})

	f.handle(":hover sine")
	assert.Equal(t, "sine generator\n", out.String())

	out.Reset()
	f.handle(":hover osc")
	assert.Equal(t, "oscillators\n", out.String())

	out.Reset()
	f.handle(":hover sinosc")
	assert.Contains(t, out.String(), "No documentation")
}

func TestHandleApply(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{})
	f.ws.SetContent("440 osc.si")
	f.ws.SetCursor(10)

	f.handle(":apply sine")

	assert.Equal(t, "440 osc.sine", f.ws.Current().Content)
	assert.Equal(t, 12, f.ws.Current().Cursor)
	assert.Equal(t, "440 osc.sine\n", out.String())

	out.Reset()
	f.handle(":apply")
	assert.Contains(t, out.String(), "Usage")
}

func TestHandleInterpreterCommands(t *testing.T) {
	interp := &fakeInterpreter{}
	f, _ := newTestFrontend(t, interp)
	f.ws.SetContent("1 2 +")
	f.ws.SetCursor(5)

	f.handle(":stop")
	f.handle(":clear")
	f.handle(":stack")
	f.handle(":run")
	f.handle(":stoprun")
	f.handle(":record")

	assert.Equal(t, []string{
		"stop",
		"clear",
		"prstk",
		"1 2 +",
		"stop",
		"1 2 +",
		`1 2 + "Untitled 1-2024-03-09_17-04-59" record`,
	}, interp.Sent())
}

func TestHandleReportsDisconnectedInterpreter(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{err: errors.ErrNotConnected})

	f.handle("1 2 +")
	assert.Contains(t, out.String(), "Interpreter not connected")
	assert.Equal(t, "1 2 +", f.ws.Current().Content)
}

func TestHandleBuffers(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{})

	f.handle(":close")
	assert.Contains(t, out.String(), "last buffer cannot be closed")

	f.handle(":new")
	f.handle(":new")
	assert.Equal(t, 3, f.ws.Len())
	assert.Equal(t, "Untitled 3", f.ws.Current().Name)

	f.handle(":next")
	assert.Equal(t, 0, f.ws.CurrentIndex())
	f.handle(":prev")
	assert.Equal(t, 2, f.ws.CurrentIndex())

	f.handle(":buffer 2")
	assert.Equal(t, 1, f.ws.CurrentIndex())

	out.Reset()
	f.handle(":buffer 9")
	assert.Contains(t, out.String(), `No buffer "9"`)

	out.Reset()
	f.handle(":buffers")
	assert.Equal(t, "  1 Untitled 1\n* 2 Untitled 2\n  3 Untitled 3\n", out.String())

	f.handle(":close")
	assert.Equal(t, 2, f.ws.Len())
	assert.Equal(t, "Untitled 3", f.ws.Current().Name)
}

func TestHandleExportAndOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drone.sapf")
	f, out := newTestFrontend(t, &fakeInterpreter{})
	f.ws.SetContent("55 0 lfsaw")

	f.handle(":export " + path)
	assert.Contains(t, out.String(), "Exported")
	assert.Equal(t, "drone.sapf", f.ws.Current().Name)
	assert.False(t, f.ws.Current().Modified)

	f.handle(":new")
	f.handle(":open " + path)
	assert.Equal(t, 3, f.ws.Len())
	assert.Equal(t, "55 0 lfsaw", f.ws.Current().Content)

	out.Reset()
	f.handle(":open " + filepath.Join(dir, "missing.sapf"))
	assert.Contains(t, out.String(), "missing.sapf")
	assert.Equal(t, 3, f.ws.Len())
}

func TestHandleUnknownCommand(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{})
	f.handle(":frobnicate")
	assert.Contains(t, out.String(), `Unknown command ":frobnicate"`)
}

func TestHandleStatus(t *testing.T) {
	f, out := newTestFrontend(t, &fakeInterpreter{})

	f.handle(":status")
	assert.Contains(t, out.String(), "No interpreter attached")

	out.Reset()
	f.status = func() bridge.Status {
		return bridge.Status{Command: "sapf", State: bridge.StateClosed.String(), PID: 42, ExitCode: 3}
	}
	f.handle(":status")
	assert.Contains(t, out.String(), "sapf  closed  pid=42  pending=0")
	assert.Contains(t, out.String(), "exit=3")
}

func TestHandleOutput(t *testing.T) {
	interp := &fakeInterpreter{pending: []string{"sapf 0.1", "ok"}}
	f, out := newTestFrontend(t, interp)

	f.tick()
	assert.Equal(t, "sapf 0.1\nok\n", out.String())

	out.Reset()
	f.handle(":output")
	assert.Equal(t, "sapf 0.1\nok\n", out.String())
}

func TestAutosave(t *testing.T) {
	store, err := workspace.NewStore(filepath.Join(t.TempDir(), "state.toml"))
	require.NoError(t, err)

	f, _ := newTestFrontend(t, &fakeInterpreter{})
	f.store = store

	f.handle("1 2 +")
	f.handle(":new")

	restored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 2, restored.Len())
	assert.Equal(t, "1 2 +", restored.Buffers()[0].Content)
	assert.Equal(t, 1, restored.CurrentIndex())
}

func TestLoopEndsWithInput(t *testing.T) {
	interp := &fakeInterpreter{pending: []string{"late output"}}
	f, out := newTestFrontend(t, interp)

	lines := make(chan string, 1)
	lines <- "1 2 +"
	close(lines)

	err := f.loop(context.Background(), lines, nil, nil, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 2 +"}, interp.Sent())
	assert.Contains(t, out.String(), "late output")
}

func TestLoopAppliesReloadedConfig(t *testing.T) {
	out := &syncBuffer{}
	sess := session.New(testDictionary(t), &fakeInterpreter{})
	f := newFrontend(out, sess, workspace.New())

	lines := make(chan string)
	reloads := make(chan *am.Config)
	errCh := make(chan error, 1)
	go func() {
		errCh <- f.loop(context.Background(), lines, reloads, nil, time.Hour)
	}()

	cfg := &am.Config{}
	cfg.Completion.MaxVisible = 1
	cfg.Log.Theme = "everforest"
	reloads <- cfg
	lines <- ":complete osc."
	lines <- ":quit"

	require.NoError(t, <-errCh)
	assert.Contains(t, out.String(), "... 2 more")
}

func TestLoopReportsExitedInterpreterOnce(t *testing.T) {
	out := &syncBuffer{}
	sess := session.New(testDictionary(t), &fakeInterpreter{})
	f := newFrontend(out, sess, workspace.New())

	exited := make(chan struct{})
	close(exited)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- f.loop(ctx, make(chan string), nil, exited, time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Interpreter exited"))
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.NoError(t, <-errCh)
	assert.Equal(t, 1, bytes.Count([]byte(out.String()), []byte("Interpreter exited")))
}
