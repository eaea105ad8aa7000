package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how Output renders a result.
type OutputFormat string

const (
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
	// FormatRaw writes bytes, strings and readers untouched and falls back
	// to YAML for anything else.
	FormatRaw OutputFormat = "raw"
)

// OutputOptions configures Output. Writer wins over File; with neither set
// the result goes to stdout.
type OutputOptions struct {
	Format OutputFormat
	File   string
	Writer io.Writer
}

// Terminal streams, swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Output renders result in the requested format.
//
// YAML is produced from the JSON encoding, so field names and custom
// marshalers match the API wire format in both formats.
func Output(result any, opts OutputOptions) error {
	w := opts.Writer
	if w == nil && opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if w == nil {
		w = stdout
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	case FormatYAML, "":
		return writeYAML(w, result)
	case FormatRaw:
		return writeRaw(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

func writeYAML(w io.Writer, result any) error {
	js, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data, err := yaml.JSONToYAML(js)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeRaw(w io.Writer, result any) error {
	var err error
	switch v := result.(type) {
	case []byte:
		_, err = w.Write(v)
	case string:
		_, err = io.WriteString(w, v)
	case io.Reader:
		_, err = io.Copy(w, v)
	default:
		return writeYAML(w, result)
	}
	return err
}

// OutputBytes saves binary data such as audio or images to path. A failed
// write never leaves a truncated file behind.
func OutputBytes(data []byte, path string) error {
	if path == "" {
		return fmt.Errorf("output file path is required for binary data")
	}
	return writeFileAtomic(path, data, 0o644)
}

// PrintSuccess reports a completed action on stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Fprintf(stdout, "✓ "+format+"\n", args...)
}

// PrintVerbose writes a diagnostic line to stderr when verbose is set.
func PrintVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(stderr, "[verbose] "+format+"\n", args...)
	}
}
