package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"

	"github.com/teranos/sapfpad/am"
	"github.com/teranos/sapfpad/dictionary"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

type fakeInterpreter struct {
	mu      sync.Mutex
	sent    []string
	pending []string
	err     error
}

func (f *fakeInterpreter) SendLine(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeInterpreter) PollOutput() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}

func (f *fakeInterpreter) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// syncBuffer is written by the loop goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testDictionary(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.New(dictionary.Table{
		"osc": {Description: "oscillators", Items: map[string]string{
			"sine":   "sine generator",
			"saw":    "sawtooth generator",
			"square": "square generator",
		}},
		"math": {Description: "arithmetic", Items: map[string]string{
			"add": "addition",
		}},
	})
	require.NoError(t, err)
	return d
}

// isolateConfig keeps the user's configuration out of the test.
func isolateConfig(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	require.NoError(t, os.MkdirAll(home, am.DefaultDirPermissions))

	t.Setenv("HOME", home)
	t.Chdir(root)
	am.Reset()
	t.Cleanup(am.Reset)

	prev := DictionaryPath
	DictionaryPath = ""
	t.Cleanup(func() { DictionaryPath = prev })
	return root
}
