package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("spawn failed"), "is sapf on PATH?")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "is sapf on PATH?", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WrapStartup(nil, "context"))
	assert.False(t, IsNotConnected(nil))
	assert.False(t, IsStartupError(nil))
}

func TestIsNotConnected(t *testing.T) {
	cause := New("write /dev/ptmx: input/output error")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", ErrNotConnected, true},
		{"wrapped", Wrap(ErrNotConnected, "send_line"), true},
		{"secondary cause kept", WithSecondaryError(ErrNotConnected, cause), true},
		{"unrelated", cause, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotConnected(tt.err))
		})
	}
}

func TestWrapStartup(t *testing.T) {
	cause := New("exec: \"sapf\": executable file not found in $PATH")
	err := WrapStartup(cause, "failed to spawn interpreter")

	assert.True(t, IsStartupError(err))
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "failed to spawn interpreter")
}

func TestNewMalformedTableError(t *testing.T) {
	err := NewMalformedTableError("category %q has no items", "osc")

	assert.True(t, Is(err, ErrMalformedTable))
	assert.Contains(t, err.Error(), `category "osc" has no items`)
}

func TestNewInvalidRequestError(t *testing.T) {
	err := NewInvalidRequestError("unknown format %q", "ini")

	assert.True(t, Is(err, ErrInvalidRequest))
	assert.Contains(t, err.Error(), "ini")
}

func ExampleWithHint() {
	err := New("pseudo-terminal allocation failed")
	err = WithHint(err, "check that /dev/ptmx is available")

	hints := GetAllHints(err)
	fmt.Println(hints[0])
	// Output: check that /dev/ptmx is available
}
