// Package session ties a buffer to the symbol dictionary and the interpreter.
//
// A Session is driven from a single goroutine: the front end calls Tick on
// every frame and the trigger methods on discrete user actions.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/sapfpad/dictionary"
	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/lex"
	"github.com/teranos/sapfpad/logger"
)

// DefaultMaxVisible is how many completion candidates a front end shows.
const DefaultMaxVisible = 10

// recordTimeFormat stamps recordings, e.g. "2024-03-09_17-04-59".
const recordTimeFormat = "2006-01-02_15-04-05"

// Interpreter is the part of the process bridge a Session needs.
type Interpreter interface {
	SendLine(text string) error
	PollOutput() []string
}

// Session holds per-interaction state: the current completions, hover text and
// the interpreter output log.
type Session struct {
	id     string
	dict   *dictionary.Dictionary
	interp Interpreter

	completions []dictionary.CompletionItem
	hover       string
	hasHover    bool
	output      strings.Builder
	maxVisible  int

	notConnected rate.Sometimes
	logger       *zap.SugaredLogger
}

// Option configures a Session.
type Option func(*Session)

// WithMaxVisible limits VisibleCompletions. Non-positive values are ignored.
func WithMaxVisible(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates a Session. interp may be nil, in which case every send reports
// errors.ErrNotConnected.
func New(dict *dictionary.Dictionary, interp Interpreter, opts ...Option) *Session {
	id := uuid.New().String()
	s := &Session{
		id:           id,
		dict:         dict,
		interp:       interp,
		maxVisible:   DefaultMaxVisible,
		notConnected: rate.Sometimes{First: 1, Interval: 10 * time.Second},
		logger:       logger.ComponentLogger("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.FieldSessionID, id)
	return s
}

// ID uniquely identifies this session in logs.
func (s *Session) ID() string {
	return s.id
}

// SetMaxVisible changes the completion display limit. Non-positive values are
// ignored.
func (s *Session) SetMaxVisible(n int) {
	if n > 0 {
		s.maxVisible = n
	}
}

// TriggerCompletion recomputes the candidates for the prefix ending at the
// cursor. With no prefix every category and symbol is offered.
func (s *Session) TriggerCompletion(buf Buffer) {
	query, ok := lex.PrefixBefore(buf.Content, buf.Cursor)
	if !ok {
		query = ""
	}
	s.completions = s.dict.Completions(query)
	s.logger.Debugw("completions",
		logger.FieldQuery, query,
		logger.FieldCount, len(s.completions))
}

// Completions returns every candidate from the last TriggerCompletion.
func (s *Session) Completions() []dictionary.CompletionItem {
	return s.completions
}

// VisibleCompletions returns the candidates a front end should display.
func (s *Session) VisibleCompletions() []dictionary.CompletionItem {
	if len(s.completions) > s.maxVisible {
		return s.completions[:s.maxVisible]
	}
	return s.completions
}

// DismissCompletions forgets the current candidates.
func (s *Session) DismissCompletions() {
	s.completions = nil
}

// Complete applies label to buf and dismisses the candidates.
func (s *Session) Complete(buf Buffer, label string) Buffer {
	s.completions = nil
	return ApplyCompletion(buf, label)
}

// RefreshHover looks up the word under the cursor, clearing the hover text
// when there is no word or no documentation.
func (s *Session) RefreshHover(buf Buffer) {
	w, ok := lex.WordAt(buf.Content, buf.Cursor)
	if !ok {
		s.hover, s.hasHover = "", false
		return
	}
	s.hover, s.hasHover = s.dict.Hover(w.Text)
}

// HoverInfo returns the documentation found by the last RefreshHover.
func (s *Session) HoverInfo() (string, bool) {
	return s.hover, s.hasHover
}

// Tick drains interpreter output into the log and refreshes the hover text.
// It returns the lines drained by this call.
func (s *Session) Tick(buf Buffer) []string {
	var lines []string
	if s.interp != nil {
		lines = s.interp.PollOutput()
	}
	for _, l := range lines {
		s.output.WriteString(l)
		s.output.WriteByte('\n')
	}
	s.RefreshHover(buf)
	return lines
}

// Output is the interpreter output seen so far, one line per row.
func (s *Session) Output() string {
	return s.output.String()
}

// ClearOutput empties the output log.
func (s *Session) ClearOutput() {
	s.output.Reset()
}

// Execute sends the current logical line unless it is blank.
// It returns the line it sent, or "" when nothing was sent.
func (s *Session) Execute(buf Buffer) (string, error) {
	code := CurrentLogicalLine(buf)
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	if err := s.send(code); err != nil {
		return "", err
	}
	return code, nil
}

// Stop silences everything the interpreter is playing.
func (s *Session) Stop() error {
	return s.send("stop")
}

// StopAndExecute stops playback, then executes the current logical line.
func (s *Session) StopAndExecute(buf Buffer) (string, error) {
	if err := s.Stop(); err != nil {
		return "", err
	}
	return s.Execute(buf)
}

// Clear empties the interpreter's stack.
func (s *Session) Clear() error {
	return s.send("clear")
}

// PrintStack asks the interpreter to print its stack.
func (s *Session) PrintStack() error {
	return s.send("prstk")
}

// Record plays the current logical line while recording it to a file named
// after bufferName and now.
func (s *Session) Record(buf Buffer, bufferName string, now time.Time) (string, error) {
	code := CurrentLogicalLine(buf)
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	line := RecordLine(code, bufferName, now)
	if err := s.send(line); err != nil {
		return "", err
	}
	return line, nil
}

// RecordLine builds the interpreter command that records code to a file.
func RecordLine(code, bufferName string, now time.Time) string {
	return fmt.Sprintf("%s %q record", code, bufferName+"-"+now.Format(recordTimeFormat))
}

func (s *Session) send(line string) error {
	var err error
	if s.interp == nil {
		err = errors.ErrNotConnected
	} else {
		err = s.interp.SendLine(line)
	}

	if err == nil {
		s.logger.Debugw("executed", logger.FieldLine, line)
		return nil
	}

	if errors.IsNotConnected(err) {
		s.notConnected.Do(func() {
			s.logger.Warnw("interpreter not connected", logger.FieldLine, line)
		})
		return err
	}
	return errors.Wrap(err, "failed to send line")
}
