package dictionary

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/sapfpad/errors"
)

// Format names the encoding of a dictionary table.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the table format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.NewInvalidRequestError("unrecognised dictionary extension %q", filepath.Ext(path))
	}
}

// Load decodes a table strictly (unknown fields are rejected) and builds a
// Dictionary from it.
func Load(data []byte, format Format) (*Dictionary, error) {
	table, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	return New(table)
}

// LoadFile reads a table from path, inferring its format from the extension.
func LoadFile(path string) (*Dictionary, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dictionary %s", path)
	}

	d, err := Load(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "dictionary %s", path)
	}
	return d, nil
}

func decode(data []byte, format Format) (Table, error) {
	var table Table

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&table); err != nil {
			return nil, errors.Wrap(errors.Mark(err, errors.ErrMalformedTable), "failed to decode JSON table")
		}

	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&table); err != nil {
			if err == io.EOF {
				return nil, errors.NewMalformedTableError("empty YAML table")
			}
			return nil, errors.Wrap(errors.Mark(err, errors.ErrMalformedTable), "failed to decode YAML table")
		}

	case FormatTOML:
		md, err := toml.Decode(string(data), &table)
		if err != nil {
			return nil, errors.Wrap(errors.Mark(err, errors.ErrMalformedTable), "failed to decode TOML table")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.NewMalformedTableError("unknown TOML keys: %v", undecoded)
		}

	default:
		return nil, errors.NewInvalidRequestError("unknown dictionary format %q", format)
	}

	return table, nil
}
