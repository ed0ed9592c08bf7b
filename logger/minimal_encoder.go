package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette holds the ANSI colours of one theme
type palette struct {
	fg       string
	time     string
	id       string
	number   string
	accent   []string
	warn     string
	warnBg   string
	err      string
	errBg    string
	received string
}

var themes = map[string]palette{
	// Everforest Dark: natural forest greens
	"everforest": {
		fg:       "\x1b[38;5;223m",
		time:     "\x1b[38;5;107m",
		id:       "\x1b[38;5;109m",
		number:   "\x1b[38;5;108m",
		accent:   []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
		warn:     "\x1b[38;5;179m",
		warnBg:   "\x1b[48;5;58m",
		err:      "\x1b[38;5;167m",
		errBg:    "\x1b[48;5;52m",
		received: "\x1b[38;5;108m",
	},
	// Gruvbox Dark: warm, muted
	"gruvbox": {
		fg:       "\x1b[38;5;223m",
		time:     "\x1b[38;5;108m",
		id:       "\x1b[38;5;109m",
		number:   "\x1b[38;5;175m",
		accent:   []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
		warn:     "\x1b[38;5;214m",
		warnBg:   "\x1b[48;5;58m",
		err:      "\x1b[38;5;167m",
		errBg:    "\x1b[48;5;88m",
		received: "\x1b[38;5;142m",
	},
}

// Current active theme (set from config or SAPFPAD_LOG_THEME)
var currentTheme = "everforest"

// SetTheme configures the color scheme for log output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

// ValidTheme reports whether name is a known log theme
func ValidTheme(name string) bool {
	_, ok := themes[name]
	return ok
}

func colors() palette {
	return themes[currentTheme]
}

// colorComponent picks a stable accent per component name
func colorComponent(name string) string {
	accent := colors().accent
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	return accent[hash%len(accent)]
}

// minimalEncoder implements a calm, compact console encoder with theme support
// Format: "13:04:35  bridge  Interpreter started  pid=4242 command=sapf"
type minimalEncoder struct {
	*zapcore.MapObjectEncoder // accumulates fields added through With()
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: clone}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level > zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if rendered := enc.renderFields(fields); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// renderFields renders With() context fields (sorted) followed by entry fields
// (in call order) as key=value pairs. No field is ever dropped.
func (enc *minimalEncoder) renderFields(fields []zapcore.Field) string {
	var parts []string

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, formatField(k, enc.Fields[k]))
	}

	if len(fields) > 0 {
		entryEnc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(entryEnc)
			parts = append(parts, formatField(f.Key, entryEnc.Fields[f.Key]))
		}
	}

	return strings.Join(parts, " ")
}

// formatField colours well-known keys; everything else is rendered plainly
func formatField(key string, value interface{}) string {
	c := colors()
	val := fmt.Sprintf("%v", value)

	switch key {
	case FieldBridgeID, FieldSessionID, FieldPID:
		return key + "=" + c.id + val + colorReset
	case FieldCount, FieldDurationMS:
		return key + "=" + c.number + val + colorReset
	case FieldLine:
		return key + "=" + c.received + fmt.Sprintf("%q", val) + colorReset
	default:
		return key + "=" + val
	}
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: session.controller -> s.controller
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}
