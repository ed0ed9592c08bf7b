// Package display renders command results for people and for scripts.
package display

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/teranos/sapfpad/errors"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// MarshalJSON marshals v with two-space indentation.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Structured renders v as JSON or YAML. It reports false for the text format
// so the caller can render its own view.
func Structured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case FormatText, "":
		return false, nil
	case FormatJSON:
		data, err := MarshalJSON(v)
		if err != nil {
			return true, errors.Wrap(err, "failed to marshal JSON")
		}
		fmt.Fprintln(w, string(data))
		return true, nil
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, errors.Wrap(err, "failed to marshal YAML")
		}
		fmt.Fprint(w, string(data))
		return true, nil
	default:
		return true, errors.NewInvalidRequestError("unsupported format: %s (supported: text, json, yaml)", format)
	}
}
