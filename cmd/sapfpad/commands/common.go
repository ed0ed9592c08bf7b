// Package commands implements the sapfpad command line.
package commands

import (
	"github.com/teranos/sapfpad/am"
	"github.com/teranos/sapfpad/bridge"
	"github.com/teranos/sapfpad/dictionary"
	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/logger"
)

// DictionaryPath is the --dictionary flag. It takes precedence over the
// dictionary.path setting.
var DictionaryPath string

// InitLogging configures the global logger from the log section. A config
// that fails to load leaves the defaults in place; the command that needs
// the config reports the error.
func InitLogging(verbosity int) error {
	jsonOutput := false
	if cfg, err := am.Load(); err == nil {
		if logger.ValidTheme(cfg.Log.Theme) {
			logger.SetTheme(cfg.Log.Theme)
		}
		jsonOutput = cfg.Log.JSON
	}
	return logger.Initialize(jsonOutput, verbosity)
}

// loadConfig loads and validates the configuration.
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.WrapStartup(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapStartup(err, "invalid configuration")
	}
	return cfg, nil
}

// loadDictionary returns the table named by --dictionary, then
// dictionary.path, then the built-in table.
func loadDictionary(cfg *am.Config) (*dictionary.Dictionary, error) {
	path := DictionaryPath
	if path == "" && cfg != nil {
		path = cfg.Dictionary.Path
	}
	if path == "" {
		return dictionary.Embedded()
	}

	dict, err := dictionary.LoadFile(path)
	if err != nil {
		return nil, errors.WithHint(err, "set dictionary.path to an empty string to use the built-in table")
	}
	logger.Logger.Debugw("dictionary loaded", "path", path, "symbols", dict.SymbolCount())
	return dict, nil
}

// bridgeOptions maps the interpreter section onto bridge options.
func bridgeOptions(cfg *am.Config) bridge.Options {
	return bridge.Options{
		Command:     cfg.Interpreter.Command,
		Rows:        cfg.Interpreter.Rows,
		Cols:        cfg.Interpreter.Cols,
		Term:        cfg.Interpreter.Term,
		SettleDelay: cfg.SettleDelay(),
	}
}

// queryDictionary loads the dictionary for commands that never start the
// interpreter, so interpreter settings are not validated.
func queryDictionary() (*dictionary.Dictionary, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return loadDictionary(cfg)
}
