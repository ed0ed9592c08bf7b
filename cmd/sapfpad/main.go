package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/sapfpad/cmd/sapfpad/commands"
	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sapfpad",
	Short: "sapfpad - scratchpad for the sapf interpreter",
	Long: `sapfpad - a scratchpad that drives a live sapf interpreter.

The interpreter runs behind a pseudo-terminal; lines are sent to it as you
work and its output is polled back. Completion and hover documentation come
from a static symbol dictionary.

Available commands:
  run      - Interactive scratchpad connected to the interpreter
  send     - Send lines to a fresh interpreter and print its output
  complete - Complete a word against the symbol dictionary
  hover    - Show documentation for a symbol or category
  dict     - List dictionary categories and symbols
  am       - Manage sapfpad configuration ("I am")
  version  - Show version information

Examples:
  sapfpad run                 # Start the scratchpad
  sapfpad send '440 0 sinosc .3 * play'
  sapfpad complete osc.s      # Items of the osc category starting with "s"
  sapfpad hover sinosc`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := commands.InitLogging(verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringVar(&commands.DictionaryPath, "dictionary", "", "Symbol table file (.json, .yaml, .toml); overrides dictionary.path")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.SendCmd)
	rootCmd.AddCommand(commands.CompleteCmd)
	rootCmd.AddCommand(commands.HoverCmd)
	rootCmd.AddCommand(commands.DictCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
