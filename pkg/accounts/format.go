package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding for account lists and config files.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for a Format other than json, yaml or toml.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FormatFromPath picks a format from a file or object name's extension.
// Unknown extensions fall back to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Unmarshal decodes data in the given format into v.
func Unmarshal(format Format, data []byte, v any) error {
	var err error
	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", format, err)
	}
	return nil
}

// Document is the on-disk shape of an account list.
type Document struct {
	Accounts []Account `json:"accounts" yaml:"accounts" toml:"accounts"`
}

// Decode parses and normalizes an account list document.
func Decode(format Format, data []byte) ([]Account, error) {
	var doc Document
	if err := Unmarshal(format, data, &doc); err != nil {
		return nil, err
	}
	return Normalize(doc.Accounts)
}
