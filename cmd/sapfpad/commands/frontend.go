package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/teranos/sapfpad/bridge"
	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/logger"
	"github.com/teranos/sapfpad/session"
	"github.com/teranos/sapfpad/workspace"
)

const commandPrefix = ":"

const frontendHelp = `Lines without a leading ':' are appended to the current buffer and sent.

  :complete [TEXT]   complete TEXT, or the word before the cursor
  :hover [WORD]      documentation for WORD, or the word under the cursor
  :apply LABEL       insert a completion at the cursor
  :run               send the current line again
  :stop              stop all sound
  :stoprun           stop, then send the current line
  :clear             clear the interpreter stack
  :stack             print the interpreter stack
  :record            play the current line while recording it
  :new :close        open or close a buffer
  :next :prev        cycle through buffers
  :buffer N          switch to buffer N
  :buffers           list buffers
  :open PATH         open a file in a new buffer
  :export [PATH]     write the current buffer
  :output            show everything the interpreter printed
  :status            interpreter status
  :help              this text
  :quit              leave`

// frontend is the line-oriented scratchpad behind "sapfpad run". It is
// driven from one goroutine.
type frontend struct {
	out   io.Writer
	sess  *session.Session
	ws    *workspace.Workspace
	store *workspace.Store // nil disables autosave
	// status is nil when no interpreter is attached.
	status func() bridge.Status
	now    func() time.Time
	logger *zap.SugaredLogger
}

func newFrontend(out io.Writer, sess *session.Session, ws *workspace.Workspace) *frontend {
	return &frontend{
		out:    out,
		sess:   sess,
		ws:     ws,
		now:    time.Now,
		logger: logger.ComponentLogger("frontend"),
	}
}

// handle processes one input line and reports whether the user asked to quit.
func (f *frontend) handle(line string) bool {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, commandPrefix) {
		f.execute(f.ws.AppendLine(line))
		f.save()
		return false
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, commandPrefix), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "q":
		return true
	case "help", "h", "?":
		fmt.Fprintln(f.out, frontendHelp)
	case "complete", "c":
		f.complete(arg)
	case "hover":
		f.hover(arg)
	case "apply":
		f.apply(arg)
	case "run", "r":
		f.execute(f.ws.Current().Text())
	case "stop", "s":
		f.report(f.sess.Stop())
	case "stoprun":
		sent, err := f.sess.StopAndExecute(f.ws.Current().Text())
		f.sent(sent, err)
	case "clear":
		f.report(f.sess.Clear())
	case "stack":
		f.report(f.sess.PrintStack())
	case "record":
		b := f.ws.Current()
		sent, err := f.sess.Record(b.Text(), b.Name, f.now())
		f.sent(sent, err)
	case "new":
		f.ws.Create()
		f.showCurrent()
		f.save()
	case "close":
		if !f.ws.CloseCurrent() {
			pterm.Warning.WithWriter(f.out).Println("The last buffer cannot be closed")
			return false
		}
		f.showCurrent()
		f.save()
	case "next":
		f.ws.Next()
		f.showCurrent()
		f.save()
	case "prev":
		f.ws.Prev()
		f.showCurrent()
		f.save()
	case "buffer", "b":
		f.switchTo(arg)
	case "buffers", "ls":
		f.listBuffers()
	case "open":
		f.open(arg)
	case "export", "w":
		f.export(arg)
	case "output":
		fmt.Fprint(f.out, f.sess.Output())
	case "status":
		f.showStatus()
	default:
		pterm.Warning.WithWriter(f.out).Printfln("Unknown command %q (try :help)", commandPrefix+name)
	}
	return false
}

// tick drains interpreter output and prints the new lines.
func (f *frontend) tick() {
	for _, line := range f.sess.Tick(f.ws.Current().Text()) {
		fmt.Fprintln(f.out, line)
	}
}

func (f *frontend) execute(buf session.Buffer) {
	sent, err := f.sess.Execute(buf)
	f.sent(sent, err)
}

func (f *frontend) sent(line string, err error) {
	if err != nil {
		f.report(err)
		return
	}
	if line != "" {
		f.logger.Debugw("line sent", logger.FieldLine, line)
	}
}

// report prints soft failures. They never end the loop.
func (f *frontend) report(err error) {
	if err == nil {
		return
	}
	if errors.IsNotConnected(err) {
		pterm.Warning.WithWriter(f.out).Println("Interpreter not connected")
		return
	}
	pterm.Error.WithWriter(f.out).Println(err.Error())
}

func (f *frontend) complete(text string) {
	buf := f.ws.Current().Text()
	if text != "" {
		buf = session.Buffer{Content: text, Cursor: len(text)}
	}
	f.sess.TriggerCompletion(buf)

	visible := f.sess.VisibleCompletions()
	if len(visible) == 0 {
		pterm.Info.WithWriter(f.out).Println("No completions")
		return
	}
	for _, item := range visible {
		fmt.Fprintf(f.out, "  %-16s %s\n", item.Label, item.Documentation)
	}
	if more := len(f.sess.Completions()) - len(visible); more > 0 {
		fmt.Fprintf(f.out, "  ... %d more\n", more)
	}
}

func (f *frontend) hover(word string) {
	buf := f.ws.Current().Text()
	if word != "" {
		buf = session.Buffer{Content: word, Cursor: 0}
	}
	f.sess.RefreshHover(buf)

	doc, ok := f.sess.HoverInfo()
	if !ok {
		pterm.Info.WithWriter(f.out).Println("No documentation")
		return
	}
	fmt.Fprintln(f.out, doc)
}

func (f *frontend) apply(label string) {
	if label == "" {
		pterm.Warning.WithWriter(f.out).Println("Usage: :apply LABEL")
		return
	}
	f.ws.Apply(f.sess.Complete(f.ws.Current().Text(), label))
	fmt.Fprintln(f.out, session.CurrentLogicalLine(f.ws.Current().Text()))
	f.save()
}

func (f *frontend) switchTo(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || !f.ws.SwitchTo(n-1) {
		pterm.Warning.WithWriter(f.out).Printfln("No buffer %q (1-%d)", arg, f.ws.Len())
		return
	}
	f.showCurrent()
	f.save()
}

func (f *frontend) listBuffers() {
	for i, b := range f.ws.Buffers() {
		marker := " "
		if i == f.ws.CurrentIndex() {
			marker = "*"
		}
		modified := ""
		if b.Modified {
			modified = " [+]"
		}
		fmt.Fprintf(f.out, "%s %d %s%s\n", marker, i+1, b.Name, modified)
	}
}

func (f *frontend) showCurrent() {
	b := f.ws.Current()
	fmt.Fprintf(f.out, "[%d/%d] %s\n", f.ws.CurrentIndex()+1, f.ws.Len(), b.Name)
}

func (f *frontend) open(path string) {
	if path == "" {
		pterm.Warning.WithWriter(f.out).Println("Usage: :open PATH")
		return
	}
	if _, err := f.ws.Open(path); err != nil {
		f.report(err)
		return
	}
	f.showCurrent()
	f.save()
}

func (f *frontend) export(path string) {
	written, err := f.ws.Export(path)
	if err != nil {
		f.report(err)
		return
	}
	pterm.Success.WithWriter(f.out).Printfln("Exported %s", written)
	f.save()
}

func (f *frontend) showStatus() {
	if f.status == nil {
		pterm.Info.WithWriter(f.out).Println("No interpreter attached")
		return
	}
	st := f.status()
	fmt.Fprintf(f.out, "%s  %s  pid=%d  pending=%d", st.Command, st.State, st.PID, st.Pending)
	if st.RSSBytes > 0 {
		fmt.Fprintf(f.out, "  rss=%.1fMiB  cpu=%.1f%%", float64(st.RSSBytes)/(1<<20), st.CPUPercent)
	}
	if st.State == bridge.StateClosed.String() && st.ExitCode >= 0 {
		fmt.Fprintf(f.out, "  exit=%d", st.ExitCode)
	}
	fmt.Fprintln(f.out)
}

// save persists the workspace when autosave is on. Failures are logged and
// otherwise ignored.
func (f *frontend) save() {
	if f.store == nil {
		return
	}
	if err := f.store.Save(f.ws); err != nil {
		f.logger.Warnw("failed to save workspace", logger.FieldFile, f.store.Path(), "error", err)
	}
}
