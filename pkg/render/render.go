// Package render writes extraction results as text, CSV, TSV, JSON, JSON
// Lines or XLSX.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pyhub-apps/pdftables-golang/pkg/engine"
)

// Format selects an output encoding
type Format int

const (
	FormatText Format = iota
	FormatCSV
	FormatTSV
	FormatJSON
	FormatJSONL
	FormatXLSX
)

var formatNames = []string{"text", "csv", "tsv", "json", "jsonl", "xlsx"}

// String returns the format's name
func (f Format) String() string {
	if int(f) >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// FileExtension returns the typical file extension for this format
func (f Format) FileExtension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + f.String()
}

// Binary reports whether the output should not be written to a terminal
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// FormatNames lists the accepted names
func FormatNames() []string {
	return append([]string(nil), formatNames...)
}

// ParseFormat maps a name such as "csv" to its Format
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(formatNames, ", "))
}

// Write encodes results in the given format
func Write(w io.Writer, f Format, results []engine.Result) error {
	switch f {
	case FormatText:
		return Text(w, results)
	case FormatCSV:
		return CSV(w, results, ',')
	case FormatTSV:
		return CSV(w, results, '\t')
	case FormatJSON:
		return JSON(w, results)
	case FormatJSONL:
		return JSONLines(w, results)
	case FormatXLSX:
		return XLSX(w, results)
	}
	return fmt.Errorf("unsupported format %v", f)
}

func label(r engine.Result) string {
	if r.Table != nil && r.Table.Title != "" {
		return r.Table.Title
	}
	return fmt.Sprintf("Section %d", r.Section.Index+1)
}
