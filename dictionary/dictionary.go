// Package dictionary answers completion and hover queries over a static
// category -> symbol -> documentation table.
//
// A Dictionary is built once and never mutated, so it is safe for concurrent
// readers.
package dictionary

import (
	_ "embed"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/lex"
	"github.com/teranos/sapfpad/logger"
)

//go:embed dictionary.json
var embeddedTable []byte

// Category groups related symbols under one name.
type Category struct {
	Description string            `json:"description" yaml:"description" toml:"description"`
	Items       map[string]string `json:"items" yaml:"items" toml:"items"`
}

// Table is the raw category name -> Category mapping a Dictionary is built from.
type Table map[string]Category

// CompletionItem is one completion candidate.
// Category candidates carry a trailing separator in their label ("osc.").
type CompletionItem struct {
	Label         string `json:"label" yaml:"label"`
	Documentation string `json:"documentation" yaml:"documentation"`
}

// Dictionary is an immutable, query-ready view of a Table.
type Dictionary struct {
	categories    Table
	categoryNames []string
	symbols       map[string]string
	symbolNames   []string
}

// Embedded returns the dictionary compiled into the binary.
func Embedded() (*Dictionary, error) {
	return Load(embeddedTable, FormatJSON)
}

// New validates table and builds a Dictionary from it.
// A symbol defined in more than one category keeps the documentation of the
// category that sorts last.
func New(table Table) (*Dictionary, error) {
	if len(table) == 0 {
		return nil, errors.NewMalformedTableError("table has no categories")
	}

	d := &Dictionary{
		categories: make(Table, len(table)),
		symbols:    make(map[string]string),
	}

	for name := range table {
		d.categoryNames = append(d.categoryNames, name)
	}
	sort.Strings(d.categoryNames)

	log := logger.ComponentLogger("dictionary")
	owner := make(map[string]string)

	for _, name := range d.categoryNames {
		cat := table[name]
		if err := validateName(name); err != nil {
			return nil, errors.Wrapf(err, "category %q", name)
		}
		if cat.Items == nil {
			return nil, errors.NewMalformedTableError("category %q has no items field", name)
		}

		items := make(map[string]string, len(cat.Items))
		for sym, doc := range cat.Items {
			if err := validateName(sym); err != nil {
				return nil, errors.Wrapf(err, "symbol %q in category %q", sym, name)
			}
			items[sym] = doc

			if prev, dup := owner[sym]; dup {
				log.Warnw("symbol defined in more than one category",
					logger.FieldSymbol, sym,
					logger.FieldCategory, name,
					"shadowed", prev)
			} else {
				d.symbolNames = append(d.symbolNames, sym)
			}
			owner[sym] = name
			d.symbols[sym] = doc
		}
		d.categories[name] = Category{Description: cat.Description, Items: items}
	}
	sort.Strings(d.symbolNames)

	log.Debugw("dictionary built",
		zap.Int("categories", len(d.categoryNames)),
		zap.Int("symbols", len(d.symbolNames)))
	return d, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewMalformedTableError("empty name")
	}
	if strings.ContainsRune(name, lex.Separator) {
		return errors.NewMalformedTableError("name %q contains %q", name, string(lex.Separator))
	}
	return nil
}

// Completions returns the candidates for query.
//
// A query holding a separator is split on its first one: the head must name a
// category exactly and the tail, trimmed of surrounding whitespace, filters
// that category's items by prefix. Otherwise matching categories come first,
// then matching symbols from every category. Each group is in lexical order.
// Misses return an empty slice.
func (d *Dictionary) Completions(query string) []CompletionItem {
	items := []CompletionItem{}

	if catName, itemPrefix, qualified := strings.Cut(query, string(lex.Separator)); qualified {
		cat, ok := d.categories[catName]
		if !ok {
			return items
		}
		itemPrefix = strings.TrimSpace(itemPrefix)
		for _, sym := range sortedKeys(cat.Items) {
			if strings.HasPrefix(sym, itemPrefix) {
				items = append(items, CompletionItem{Label: sym, Documentation: cat.Items[sym]})
			}
		}
		return items
	}

	for _, name := range d.categoryNames {
		if strings.HasPrefix(name, query) {
			items = append(items, CompletionItem{
				Label:         name + string(lex.Separator),
				Documentation: d.categories[name].Description,
			})
		}
	}
	for _, sym := range d.symbolNames {
		if strings.HasPrefix(sym, query) {
			items = append(items, CompletionItem{Label: sym, Documentation: d.symbols[sym]})
		}
	}
	return items
}

// Hover returns the documentation for an exact category name or symbol.
// Category names win over symbols of the same spelling.
func (d *Dictionary) Hover(word string) (string, bool) {
	if cat, ok := d.categories[word]; ok {
		return cat.Description, true
	}
	if doc, ok := d.symbols[word]; ok {
		return doc, true
	}
	return "", false
}

// Categories lists category names in lexical order.
func (d *Dictionary) Categories() []string {
	return append([]string(nil), d.categoryNames...)
}

// Category returns a copy of the named category.
func (d *Dictionary) Category(name string) (Category, bool) {
	cat, ok := d.categories[name]
	if !ok {
		return Category{}, false
	}
	items := make(map[string]string, len(cat.Items))
	for k, v := range cat.Items {
		items[k] = v
	}
	return Category{Description: cat.Description, Items: items}, true
}

// SymbolCount is the number of distinct symbols across all categories.
func (d *Dictionary) SymbolCount() int {
	return len(d.symbolNames)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
