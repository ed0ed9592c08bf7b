package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/sapfpad/bridge"
	"github.com/teranos/sapfpad/logger"
	"github.com/teranos/sapfpad/session"
)

var (
	sendWait time.Duration
	sendStop bool
)

// SendCmd sends lines to a freshly started interpreter.
var SendCmd = &cobra.Command{
	Use:   "send LINE...",
	Short: "Send lines to the interpreter and print its output",
	Long: `Start the interpreter, send each LINE in order, print whatever it writes
during --wait, then shut it down.

Examples:
  sapfpad send '1 2 +' prstk
  sapfpad send --wait 5s '440 0 sinosc .3 * play'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b, err := bridge.Start(ctx, bridgeOptions(cfg))
		if err != nil {
			return err
		}
		defer b.Close()

		return runSend(ctx, cmd.OutOrStdout(), b, args, sendWait, cfg.TickInterval(), sendStop)
	},
}

func init() {
	SendCmd.Flags().DurationVar(&sendWait, "wait", 2*time.Second, "How long to collect output after the last line")
	SendCmd.Flags().BoolVar(&sendStop, "stop", false, "Send stop before exiting")
}

// runSend sends lines, then prints output polled every tick until wait has
// passed or ctx is cancelled. A failed send aborts the remaining lines.
func runSend(ctx context.Context, w io.Writer, interp session.Interpreter, lines []string, wait, tick time.Duration, stop bool) error {
	for _, line := range lines {
		if err := interp.SendLine(line); err != nil {
			return err
		}
		logger.Logger.Debugw("line sent", logger.FieldLine, line)
	}

	drain := func() {
		for _, out := range interp.PollOutput() {
			fmt.Fprintln(w, out)
		}
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	deadline := time.NewTimer(wait)
	defer deadline.Stop()

	for {
		select {
		case <-ticker.C:
			drain()
		case <-deadline.C:
			drain()
			if stop {
				return interp.SendLine("stop")
			}
			return nil
		case <-ctx.Done():
			drain()
			return nil
		}
	}
}
