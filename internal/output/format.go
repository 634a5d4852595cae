package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format specifies how structured output is rendered.
type Format string

const (
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"

	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"

	// FormatTable renders a styled table.
	FormatTable Format = "table"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatYAML, FormatJSON, FormatTable:
		return true
	default:
		return false
	}
}

// ParseFormat parses s case-insensitively. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(s))
	if f == "yml" {
		f = FormatYAML
	}
	if !f.Valid() {
		return Format(s), false
	}
	return f, true
}

// ValidFormats returns the accepted format names.
func ValidFormats() []string {
	return []string{"yaml", "json", "table"}
}

// WriteStructured encodes v to w as YAML or JSON.
func WriteStructured(w io.Writer, f Format, v any) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("format %q is not a structured format", f)
	}
}
