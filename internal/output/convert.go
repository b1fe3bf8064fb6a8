package output

import (
	"fmt"

	sigsyaml "sigs.k8s.io/yaml"
)

// Format is a snapshot encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of json, yaml", s)
	}
}

// Convert encodes a spec document in format. FormatJSON returns data as-is so
// the snapshot stays byte-identical to what the server returned.
func Convert(data []byte, format Format) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		return data, nil
	case FormatYAML:
		out, err := sigsyaml.JSONToYAML(data)
		if err != nil {
			return nil, fmt.Errorf("converting document to YAML: %w", err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
