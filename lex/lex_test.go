package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordAt(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   Word
		ok     bool
	}{
		{"inside word", "440 sinosc play", 6, Word{"sinosc", 4, 10}, true},
		{"at word start", "440 sinosc play", 4, Word{"sinosc", 4, 10}, true},
		{"at word end", "440 sinosc play", 10, Word{"sinosc", 4, 10}, true},
		{"number", "440 sinosc", 1, Word{"440", 0, 3}, true},
		{"underscore", "a my_word b", 5, Word{"my_word", 2, 9}, true},
		{"stops at separator", "osc.sine", 6, Word{"sine", 4, 8}, true},
		{"between spaces", "a  b", 2, Word{}, false},
		{"empty text", "", 0, Word{}, false},
		{"end of text after space", "play ", 5, Word{}, false},
		{"end of text after word", "play", 4, Word{"play", 0, 4}, true},
		{"past end", "play", 9, Word{}, false},
		{"negative", "play", -1, Word{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WordAt(tt.text, tt.offset)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixBefore(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   string
		ok     bool
	}{
		{"word", "440 sin", 7, "sin", true},
		{"category and item", "1 osc.si", 8, "osc.si", true},
		{"bare category", "osc.", 4, "osc.", true},
		{"mid word", "sinosc", 3, "sin", true},
		{"after space", "play ", 5, "", false},
		{"start of text", "play", 0, "", false},
		{"after punctuation", "[1 2]", 5, "", false},
		{"past end", "abc", 4, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PrefixBefore(tt.text, tt.offset)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixStart(t *testing.T) {
	assert.Equal(t, 0, PrefixStart("foo.ba", 6))
	assert.Equal(t, 2, PrefixStart("1 osc.", 6))
	assert.Equal(t, 5, PrefixStart("play ", 5))
}

func TestIsWordByte(t *testing.T) {
	for _, c := range []byte("azAZ09_") {
		assert.True(t, IsWordByte(c), string(c))
	}
	for _, c := range []byte(" .-+*\n\t\"") {
		assert.False(t, IsWordByte(c), string(c))
	}
	assert.True(t, IsPrefixByte('.'))
	assert.False(t, IsPrefixByte('-'))
}
