package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats for printing a report locally.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Marshal renders the report in its wire form.
func Marshal(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// Write prints r to w in the given format, indented for reading.
func Write(w io.Writer, r *Report, format string) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
