// Package document loads and decodes the documents Doppel compares.
//
// JSON and YAML decode into the same shapes: maps, slices, strings, bools
// and numbers. JSON numbers surface as float64 and YAML integers as int;
// the comparison engine reconciles the two, so decoded documents from either
// format compare cleanly against each other and against typed values.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doppelgang/doppel/internal/types"
)

// Format identifies a document encoding.
type Format string

const (
	// FormatAuto selects the format from the file extension.
	FormatAuto Format = "auto"

	// FormatJSON decodes via encoding/json.
	FormatJSON Format = "json"

	// FormatYAML decodes via gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, s)
}

// DetectFormat selects a format from the path extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unrecognized extension on %q", types.ErrUnsupportedFormat, filepath.Base(path))
}

// Decode parses data in the given format into plain values. Empty and
// oversized inputs are rejected before any parser runs.
func Decode(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, types.ErrDocumentEmpty
	}
	if len(data) > types.MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", types.ErrDocumentTooLarge, len(data), types.MaxDocumentSize)
	}

	var v any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
	return v, nil
}

// Load reads and decodes the document at path. FormatAuto detects the
// format from the extension; any other format overrides detection.
func Load(path string, format Format) (any, error) {
	if format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	v, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Canonical re-encodes a decoded document as JSON. Snapshots store the
// canonical form so one checksum covers a document regardless of whether
// it arrived as JSON or YAML.
func Canonical(v any) (types.Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode canonical json: %w", err)
	}
	return types.Document(data), nil
}
