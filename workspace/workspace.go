// Package workspace keeps the set of open buffers and persists them between
// runs.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/session"
)

const (
	untitledPrefix = "Untitled "
	fileExtension  = ".sapf"
)

// Buffer is one open document.
type Buffer struct {
	Name     string `toml:"name"`
	Content  string `toml:"content"`
	Cursor   int    `toml:"cursor"`
	Modified bool   `toml:"modified"`
	FilePath string `toml:"file_path,omitempty"`
}

// Text returns the content and cursor in the form the session works on.
func (b *Buffer) Text() session.Buffer {
	return session.Buffer{Content: b.Content, Cursor: b.Cursor}
}

// DefaultExportName is the file name offered when exporting b for the first
// time.
func (b *Buffer) DefaultExportName() string {
	if b.FilePath != "" {
		return filepath.Base(b.FilePath)
	}
	if strings.HasSuffix(b.Name, fileExtension) {
		return b.Name
	}
	return b.Name + fileExtension
}

// Workspace is an ordered list of buffers with one current buffer. It always
// holds at least one buffer.
type Workspace struct {
	buffers []*Buffer
	current int
	nextID  int
}

// New returns a workspace holding a single empty "Untitled 1" buffer.
func New() *Workspace {
	w := &Workspace{nextID: 1}
	w.Create()
	return w
}

// Current returns the buffer being edited.
func (w *Workspace) Current() *Buffer {
	return w.buffers[w.current]
}

// CurrentIndex returns the position of the current buffer.
func (w *Workspace) CurrentIndex() int {
	return w.current
}

// Len returns the number of open buffers.
func (w *Workspace) Len() int {
	return len(w.buffers)
}

// Buffers returns copies of all buffers in order.
func (w *Workspace) Buffers() []Buffer {
	out := make([]Buffer, len(w.buffers))
	for i, b := range w.buffers {
		out[i] = *b
	}
	return out
}

// Create appends an empty buffer named after the next id and makes it current.
func (w *Workspace) Create() *Buffer {
	b := &Buffer{Name: fmt.Sprintf("%s%d", untitledPrefix, w.nextID)}
	w.nextID++
	w.buffers = append(w.buffers, b)
	w.current = len(w.buffers) - 1
	return b
}

// CloseCurrent removes the current buffer unless it is the only one.
// It reports whether a buffer was closed.
func (w *Workspace) CloseCurrent() bool {
	if len(w.buffers) <= 1 {
		return false
	}
	w.buffers = append(w.buffers[:w.current], w.buffers[w.current+1:]...)
	if w.current >= len(w.buffers) {
		w.current = len(w.buffers) - 1
	}
	return true
}

// SwitchTo makes buffer i current. Out-of-range indexes are ignored.
func (w *Workspace) SwitchTo(i int) bool {
	if i < 0 || i >= len(w.buffers) {
		return false
	}
	w.current = i
	return true
}

// Next moves to the following buffer, wrapping around.
func (w *Workspace) Next() {
	if len(w.buffers) > 1 {
		w.current = (w.current + 1) % len(w.buffers)
	}
}

// Prev moves to the preceding buffer, wrapping around.
func (w *Workspace) Prev() {
	if len(w.buffers) > 1 {
		w.current = (w.current - 1 + len(w.buffers)) % len(w.buffers)
	}
}

// SetContent replaces the current buffer's text. The cursor is clamped into
// the new content.
func (w *Workspace) SetContent(content string) {
	b := w.Current()
	if b.Content != content {
		b.Content = content
		b.Modified = true
	}
	b.Cursor = clamp(b.Cursor, len(content))
}

// SetCursor moves the current buffer's cursor, clamped into its content.
func (w *Workspace) SetCursor(cursor int) {
	b := w.Current()
	b.Cursor = clamp(cursor, len(b.Content))
}

// Apply stores an edited session buffer back into the current buffer.
func (w *Workspace) Apply(text session.Buffer) {
	w.SetContent(text.Content)
	w.SetCursor(text.Cursor)
}

// AppendLine adds line at the end of the current buffer on a line of its own
// and places the cursor after it.
func (w *Workspace) AppendLine(line string) session.Buffer {
	b := w.Current()
	content := b.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	w.SetContent(content + line)
	w.SetCursor(len(b.Content))
	return b.Text()
}

// Open reads path into a new current buffer named after the file.
func (w *Workspace) Open(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	b := &Buffer{
		Name:     filepath.Base(path),
		Content:  string(data),
		FilePath: abs,
	}
	w.buffers = append(w.buffers, b)
	w.current = len(w.buffers) - 1
	return b, nil
}

// Export writes the current buffer to path. An empty path reuses the buffer's
// file or its default export name. Untitled buffers take the file's name.
func (w *Workspace) Export(path string) (string, error) {
	b := w.Current()
	if path == "" {
		path = b.FilePath
		if path == "" {
			path = b.DefaultExportName()
		}
	}

	if err := os.WriteFile(path, []byte(b.Content), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to export %q to %s", b.Name, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	b.FilePath = abs
	b.Modified = false
	if strings.HasPrefix(b.Name, untitledPrefix) {
		b.Name = filepath.Base(path)
	}
	return abs, nil
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
