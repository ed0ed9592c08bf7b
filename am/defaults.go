package am

import (
	"github.com/spf13/viper"
)

// Default values, shared with the flag help text in cmd/sapfpad
const (
	DefaultCommand    = "sapf"
	DefaultSettleMS   = 1000
	DefaultRows       = 24
	DefaultCols       = 80
	DefaultTerm       = "xterm"
	DefaultMaxVisible = 10
	DefaultTickMS     = 50
	DefaultLogTheme   = "everforest"
)

// SetDefaults configures default values for all configuration options.
// Every key must have a default so environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("interpreter.command", DefaultCommand)
	v.SetDefault("interpreter.settle_ms", DefaultSettleMS) // sapf prints its banner before accepting input
	v.SetDefault("interpreter.rows", DefaultRows)
	v.SetDefault("interpreter.cols", DefaultCols)
	v.SetDefault("interpreter.term", DefaultTerm)

	v.SetDefault("completion.max_visible", DefaultMaxVisible)

	v.SetDefault("dictionary.path", "")

	v.SetDefault("session.tick_ms", DefaultTickMS)

	v.SetDefault("workspace.state_path", "")
	v.SetDefault("workspace.autosave", true)

	v.SetDefault("log.theme", DefaultLogTheme)
	v.SetDefault("log.json", false)
}
