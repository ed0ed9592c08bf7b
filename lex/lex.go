// Package lex locates the token touching a cursor offset in free-form text.
//
// Offsets are byte indexes. Only ASCII letters, digits and '_' are word
// characters; completion prefixes additionally accept the category separator
// '.'. Callers must pass offsets that lie on a character boundary.
package lex

// Separator joins a category name and an item name, as in "osc.sine".
const Separator = '.'

// Word is a run of word characters and its [Start, End) byte span.
type Word struct {
	Text  string
	Start int
	End   int
}

// IsWordByte reports whether c is an ASCII letter, digit or underscore.
func IsWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// IsPrefixByte reports whether c may appear in a completion prefix.
func IsPrefixByte(c byte) bool {
	return IsWordByte(c) || c == Separator
}

// WordAt returns the word that contains offset or starts exactly at it.
// ok is false when offset is out of range or both neighbours are non-word
// characters.
func WordAt(text string, offset int) (w Word, ok bool) {
	if offset < 0 || offset > len(text) {
		return Word{}, false
	}

	start, end := offset, offset
	for start > 0 && IsWordByte(text[start-1]) {
		start--
	}
	for end < len(text) && IsWordByte(text[end]) {
		end++
	}

	if start == end {
		return Word{}, false
	}
	return Word{Text: text[start:end], Start: start, End: end}, true
}

// PrefixStart scans backward from offset over word characters and separators
// and returns where the scan stopped. It returns offset itself when nothing
// qualifying precedes it.
func PrefixStart(text string, offset int) int {
	start := offset
	for start > 0 && IsPrefixByte(text[start-1]) {
		start--
	}
	return start
}

// PrefixBefore returns the completion query ending at offset, e.g. "osc.si".
// ok is false when offset is out of range or no word character or separator
// immediately precedes it.
func PrefixBefore(text string, offset int) (string, bool) {
	if offset < 0 || offset > len(text) {
		return "", false
	}

	start := PrefixStart(text, offset)
	if start == offset {
		return "", false
	}
	return text[start:offset], true
}
