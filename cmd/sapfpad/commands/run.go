package commands

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/sapfpad/am"
	"github.com/teranos/sapfpad/bridge"
	"github.com/teranos/sapfpad/logger"
	"github.com/teranos/sapfpad/session"
	"github.com/teranos/sapfpad/workspace"
)

// RunCmd starts the interactive scratchpad.
var RunCmd = &cobra.Command{
	Use:   "run [FILE...]",
	Short: "Interactive scratchpad connected to the interpreter",
	Long: `Start the interpreter and read lines from standard input.

Plain lines are appended to the current buffer and sent to the interpreter.
Lines starting with ':' are scratchpad commands; type :help to list them.
Buffers are restored from, and saved to, workspace.state_path. Each FILE is
opened in a buffer of its own.

Logs go to stderr; interpreter output goes to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runScratchpad(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args)
	},
}

func runScratchpad(ctx context.Context, in io.Reader, out io.Writer, files []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dict, err := loadDictionary(cfg)
	if err != nil {
		return err
	}

	ws, store := restoreWorkspace(cfg)
	for _, path := range files {
		if _, err := ws.Open(path); err != nil {
			return err
		}
	}

	b, err := bridge.Start(ctx, bridgeOptions(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			logger.Logger.Warnw("failed to close interpreter", logger.FieldError, cerr)
		}
	}()

	sess := session.New(dict, b, session.WithMaxVisible(cfg.Completion.MaxVisible))
	f := newFrontend(out, sess, ws)
	f.status = b.Status
	if cfg.Workspace.Autosave {
		f.store = store
	}
	defer f.save()

	reloads := make(chan *am.Config, 1)
	if watcher := watchProjectConfig(reloads); watcher != nil {
		defer watcher.Stop()
	}

	pterm.Info.WithWriter(out).Printfln("%s started (pid %d); :help lists commands", cfg.Interpreter.Command, b.PID())
	return f.loop(ctx, readLines(in), reloads, b.Done(), cfg.TickInterval())
}

// loop multiplexes user input, the output ticker and configuration reloads
// until the input ends, :quit is entered or ctx is cancelled. An exited
// interpreter is reported once; the buffers stay usable.
func (f *frontend) loop(ctx context.Context, lines <-chan string, reloads <-chan *am.Config, exited <-chan struct{}, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.tick()
			return nil

		case line, ok := <-lines:
			if !ok {
				f.tick()
				return nil
			}
			if f.handle(line) {
				return nil
			}

		case <-ticker.C:
			f.tick()

		case cfg := <-reloads:
			f.sess.SetMaxVisible(cfg.Completion.MaxVisible)
			logger.SetTheme(cfg.Log.Theme)
			f.logger.Infow("configuration reloaded", "max_visible", cfg.Completion.MaxVisible)

		case <-exited:
			f.tick()
			pterm.Warning.WithWriter(f.out).Println("Interpreter exited; lines will not be sent")
			exited = nil
		}
	}
}

// restoreWorkspace loads the saved buffers. Any failure falls back to a fresh
// workspace; the store is nil when no state path can be determined.
func restoreWorkspace(cfg *am.Config) (*workspace.Workspace, *workspace.Store) {
	store, err := workspace.NewStore(cfg.Workspace.StatePath)
	if err != nil {
		logger.Logger.Warnw("workspace will not be saved", logger.FieldError, err)
		return workspace.New(), nil
	}

	ws, err := store.Load()
	if err != nil {
		logger.Logger.Warnw("starting with an empty workspace",
			logger.FieldFile, store.Path(),
			logger.FieldError, err)
		return workspace.New(), store
	}
	return ws, store
}

// watchProjectConfig forwards validated project config reloads to reloads,
// keeping only the newest. It returns nil when there is no project config.
func watchProjectConfig(reloads chan *am.Config) *am.ConfigWatcher {
	path := am.FindProjectConfig()
	if path == "" {
		return nil
	}

	watcher, err := am.NewConfigWatcher(path)
	if err != nil {
		logger.Logger.Warnw("config hot reload disabled", logger.FieldFile, path, logger.FieldError, err)
		return nil
	}
	watcher.OnReload(func(cfg *am.Config) error {
		select {
		case <-reloads:
		default:
		}
		select {
		case reloads <- cfg:
		default:
		}
		return nil
	})
	watcher.Start()
	return watcher
}

// readLines delivers in line by line and closes the channel at end of input.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Logger.Warnw("failed to read input", logger.FieldError, err)
		}
	}()
	return lines
}
