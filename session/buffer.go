package session

import (
	"strings"

	"github.com/teranos/sapfpad/lex"
)

// Buffer is the editable text and its cursor, a byte offset into Content.
type Buffer struct {
	Content string
	Cursor  int
}

// CurrentLogicalLine returns the line the cursor sits on.
//
// A line starting at s with length n holds the cursor when s <= cursor <= s+n,
// so a cursor resting on a line's newline still selects that line. A trailing
// newline does not open an empty final line, and a carriage return before a
// newline is not part of the line. When no line holds the cursor the last
// line is returned; empty content yields "".
func CurrentLogicalLine(buf Buffer) string {
	lines := splitLines(buf.Content)

	start := 0
	for _, l := range lines {
		if buf.Cursor >= start && buf.Cursor <= start+l.size {
			return l.text
		}
		start += l.size + 1
	}

	if len(lines) > 0 {
		return lines[len(lines)-1].text
	}
	return ""
}

type line struct {
	text string
	size int
}

func splitLines(content string) []line {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")

	raw := strings.Split(content, "\n")
	out := make([]line, len(raw))
	for i, r := range raw {
		out[i] = line{text: strings.TrimSuffix(r, "\r"), size: len(r)}
	}
	return out
}

// ApplyCompletion replaces the word or qualified name ending at the cursor with
// label and moves the cursor just past the insertion. When the replaced text
// carries a category qualifier ("osc.si") and label is an item name, the
// qualifier is kept so "osc.si" + "sine" gives "osc.sine". A cursor outside
// the content leaves the buffer unchanged.
func ApplyCompletion(buf Buffer, label string) Buffer {
	if buf.Cursor < 0 || buf.Cursor > len(buf.Content) {
		return buf
	}

	start := lex.PrefixStart(buf.Content, buf.Cursor)
	if strings.IndexByte(label, lex.Separator) < 0 {
		if dot := strings.LastIndexByte(buf.Content[start:buf.Cursor], lex.Separator); dot >= 0 {
			start += dot + 1
		}
	}

	content := buf.Content[:start] + label + buf.Content[buf.Cursor:]
	return Buffer{Content: content, Cursor: start + len(label)}
}
