package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRequest loads a request from a YAML or JSON file into v.
func LoadRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return ParseRequest(data, v)
}

// ParseRequest decodes a YAML or JSON document into v. Field names follow
// v's json tags, so request files use the same keys as the API wire
// format and custom json.Unmarshaler implementations apply to both
// syntaxes.
func ParseRequest(data []byte, v any) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("request is empty")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert request: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

// LoadRequestFromReader loads a request from r, typically stdin.
func LoadRequestFromReader(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return ParseRequest(data, v)
}
