// Package am ("I am") holds sapfpad's configuration.
//
// Settings are merged from, lowest precedence first: built-in defaults,
// /etc/sapfpad/am.toml, ~/.sapfpad/am.toml, the nearest am.toml found by
// walking up from the working directory, and SAPFPAD_* environment variables
// (SAPFPAD_INTERPRETER_COMMAND overrides interpreter.command).
package am

import (
	"fmt"
	"time"
)

// Config represents the sapfpad configuration
type Config struct {
	Interpreter InterpreterConfig `mapstructure:"interpreter" json:"interpreter" yaml:"interpreter" toml:"interpreter"`
	Completion  CompletionConfig  `mapstructure:"completion" json:"completion" yaml:"completion" toml:"completion"`
	Dictionary  DictionaryConfig  `mapstructure:"dictionary" json:"dictionary" yaml:"dictionary" toml:"dictionary"`
	Session     SessionConfig     `mapstructure:"session" json:"session" yaml:"session" toml:"session"`
	Workspace   WorkspaceConfig   `mapstructure:"workspace" json:"workspace" yaml:"workspace" toml:"workspace"`
	Log         LogConfig         `mapstructure:"log" json:"log" yaml:"log" toml:"log"`
}

// InterpreterConfig configures the child process behind the pseudo-terminal
type InterpreterConfig struct {
	Command  string `mapstructure:"command" json:"command" yaml:"command" toml:"command"`   // Command line, shell-quoted (default: sapf)
	SettleMS int    `mapstructure:"settle_ms" json:"settle_ms" yaml:"settle_ms" toml:"settle_ms"` // Wait after spawn before the first send (default: 1000)
	Rows     int    `mapstructure:"rows" json:"rows" yaml:"rows" toml:"rows"`      // Terminal rows (default: 24)
	Cols     int    `mapstructure:"cols" json:"cols" yaml:"cols" toml:"cols"`      // Terminal columns (default: 80)
	Term     string `mapstructure:"term" json:"term" yaml:"term" toml:"term"`      // TERM exported to the child (default: xterm)
}

// CompletionConfig configures completion display
type CompletionConfig struct {
	MaxVisible int `mapstructure:"max_visible" json:"max_visible" yaml:"max_visible" toml:"max_visible"` // Candidates shown at once (default: 10)
}

// DictionaryConfig selects the symbol table
type DictionaryConfig struct {
	Path string `mapstructure:"path" json:"path" yaml:"path" toml:"path"` // .json, .yaml or .toml table; empty = built-in table
}

// SessionConfig configures the interaction loop
type SessionConfig struct {
	TickMS int `mapstructure:"tick_ms" json:"tick_ms" yaml:"tick_ms" toml:"tick_ms"` // Output polling interval (default: 50)
}

// WorkspaceConfig configures buffer persistence
type WorkspaceConfig struct {
	StatePath string `mapstructure:"state_path" json:"state_path" yaml:"state_path" toml:"state_path"` // empty = <user config dir>/sapfpad/state.toml
	Autosave  bool   `mapstructure:"autosave" json:"autosave" yaml:"autosave" toml:"autosave"`   // Save the workspace after every change (default: true)
}

// LogConfig configures console logging
type LogConfig struct {
	Theme string `mapstructure:"theme" json:"theme" yaml:"theme" toml:"theme"` // Color theme: everforest, gruvbox
	JSON  bool   `mapstructure:"json" json:"json" yaml:"json" toml:"json"`  // JSON log lines instead of console output
}

// SettleDelay returns interpreter.settle_ms as a duration
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Interpreter.SettleMS) * time.Millisecond
}

// TickInterval returns session.tick_ms as a duration
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Session.TickMS) * time.Millisecond
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Interpreter: {Command: %q, Settle: %s}, Dictionary: %q, Log: {Theme: %s}}",
		c.Interpreter.Command, c.SettleDelay(), c.Dictionary.Path, c.Log.Theme)
}

// File system constants
const (
	DefaultDirPermissions  = 0750
	DefaultFilePermissions = 0644
)
