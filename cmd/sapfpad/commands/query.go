package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/sapfpad/dictionary"
	"github.com/teranos/sapfpad/display"
	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/lex"
)

var (
	queryFormat string
	queryCursor int
)

// CompleteCmd completes against the symbol dictionary without an interpreter.
var CompleteCmd = &cobra.Command{
	Use:   "complete [TEXT]",
	Short: "Complete the word before the cursor",
	Long: `Complete the word ending at --cursor in TEXT (default: the end of TEXT).

"osc.s" lists the items of the osc category starting with "s"; "si" lists
categories and symbols starting with "si"; no TEXT lists everything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dict, err := queryDictionary()
		if err != nil {
			return err
		}
		text := ""
		if len(args) == 1 {
			text = args[0]
		}
		return runComplete(cmd.OutOrStdout(), dict, text, queryCursor, queryFormat)
	},
}

// HoverCmd shows the documentation for the word under the cursor.
var HoverCmd = &cobra.Command{
	Use:   "hover TEXT",
	Short: "Show documentation for a symbol or category",
	Long:  `Show documentation for the word at --cursor in TEXT (default: the start of TEXT).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dict, err := queryDictionary()
		if err != nil {
			return err
		}
		cursor := queryCursor
		if cursor < 0 {
			cursor = 0
		}
		return runHover(cmd.OutOrStdout(), dict, args[0], cursor, queryFormat)
	},
}

// DictCmd lists the symbol dictionary.
var DictCmd = &cobra.Command{
	Use:   "dict [CATEGORY]",
	Short: "List dictionary categories and symbols",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dict, err := queryDictionary()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return runDictCategory(cmd.OutOrStdout(), dict, args[0], queryFormat)
		}
		return runDictSummary(cmd.OutOrStdout(), dict, queryFormat)
	},
}

func init() {
	for _, c := range []*cobra.Command{CompleteCmd, HoverCmd, DictCmd} {
		c.Flags().StringVar(&queryFormat, "format", display.FormatText, "Output format: text, json, yaml")
	}
	CompleteCmd.Flags().IntVar(&queryCursor, "cursor", -1, "Byte offset of the cursor in TEXT")
	HoverCmd.Flags().IntVar(&queryCursor, "cursor", -1, "Byte offset of the cursor in TEXT")
}

func runComplete(w io.Writer, dict *dictionary.Dictionary, text string, cursor int, format string) error {
	if cursor < 0 {
		cursor = len(text)
	}
	if cursor > len(text) {
		return errors.NewInvalidRequestError("cursor %d is past the end of the text (%d bytes)", cursor, len(text))
	}

	query, ok := lex.PrefixBefore(text, cursor)
	if !ok {
		query = ""
	}
	items := dict.Completions(query)

	if done, err := display.Structured(w, format, items); done {
		return err
	}
	if len(items) == 0 {
		pterm.Info.WithWriter(w).Printfln("No completions for %q", query)
		return nil
	}

	data := pterm.TableData{{"Label", "Documentation"}}
	for _, item := range items {
		data = append(data, []string{item.Label, item.Documentation})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

type hoverResult struct {
	Word          string `json:"word" yaml:"word"`
	Documentation string `json:"documentation" yaml:"documentation"`
}

func runHover(w io.Writer, dict *dictionary.Dictionary, text string, cursor int, format string) error {
	word, ok := lex.WordAt(text, cursor)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "no word at offset %d", cursor)
	}
	doc, ok := dict.Hover(word.Text)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "no documentation for %q", word.Text)
	}

	if done, err := display.Structured(w, format, hoverResult{Word: word.Text, Documentation: doc}); done {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", word.Text, doc)
	return nil
}

type categorySummary struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Items       int    `json:"items" yaml:"items"`
}

func runDictSummary(w io.Writer, dict *dictionary.Dictionary, format string) error {
	var summary []categorySummary
	for _, name := range dict.Categories() {
		cat, _ := dict.Category(name)
		summary = append(summary, categorySummary{Name: name, Description: cat.Description, Items: len(cat.Items)})
	}

	if done, err := display.Structured(w, format, summary); done {
		return err
	}

	data := pterm.TableData{{"Category", "Items", "Description"}}
	for _, s := range summary {
		data = append(data, []string{s.Name, fmt.Sprintf("%d", s.Items), s.Description})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d categories, %d symbols\n", len(summary), dict.SymbolCount())
	return nil
}

func runDictCategory(w io.Writer, dict *dictionary.Dictionary, name, format string) error {
	cat, ok := dict.Category(strings.TrimSuffix(name, string(lex.Separator)))
	if !ok {
		return errors.WithHint(
			errors.Wrapf(errors.ErrNotFound, "category %q", name),
			"run 'sapfpad dict' to list categories")
	}

	if done, err := display.Structured(w, format, cat); done {
		return err
	}

	fmt.Fprintln(w, cat.Description)
	fmt.Fprintln(w)
	prefix := strings.TrimSuffix(name, string(lex.Separator)) + string(lex.Separator)
	data := pterm.TableData{{"Symbol", "Documentation"}}
	for _, item := range dict.Completions(prefix) {
		data = append(data, []string{item.Label, item.Documentation})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
