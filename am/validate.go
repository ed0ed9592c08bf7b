package am

import (
	"strings"

	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/logger"
)

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Interpreter.Command) == "" {
		return errors.WithHint(
			errors.New("interpreter.command cannot be empty"),
			"set it to the interpreter executable, e.g. command = \"sapf\"")
	}

	// Settle delay: 0 = send immediately, negative = invalid
	if c.Interpreter.SettleMS < 0 {
		return errors.Newf("interpreter.settle_ms must be >= 0, got %d", c.Interpreter.SettleMS)
	}
	if c.Interpreter.Rows <= 0 {
		return errors.Newf("interpreter.rows must be > 0, got %d", c.Interpreter.Rows)
	}
	if c.Interpreter.Cols <= 0 {
		return errors.Newf("interpreter.cols must be > 0, got %d", c.Interpreter.Cols)
	}

	if c.Completion.MaxVisible <= 0 {
		return errors.Newf("completion.max_visible must be > 0, got %d", c.Completion.MaxVisible)
	}

	if c.Session.TickMS <= 0 {
		return errors.Newf("session.tick_ms must be > 0, got %d", c.Session.TickMS)
	}

	if c.Log.Theme != "" && !logger.ValidTheme(c.Log.Theme) {
		return errors.WithHint(
			errors.Newf("log.theme %q is not a known theme", c.Log.Theme),
			"use everforest or gruvbox")
	}

	return nil
}
