package render

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/pyhub-apps/pdftables-golang/pkg/engine"
)

// CSV writes each table as a title record followed by the header and body
// records. Tables are separated by an empty record; failed sections are
// skipped.
func CSV(w io.Writer, results []engine.Result, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	first := true
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !first {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		first = false

		if err := cw.Write([]string{label(r)}); err != nil {
			return err
		}
		if err := cw.WriteAll(r.Table.Records()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record is the serializable form of one result
type Record struct {
	Run          string     `json:"run"`
	Section      int        `json:"section"`
	StartPage    int        `json:"start_page"`
	EndPage      int        `json:"end_page"`
	Unterminated bool       `json:"unterminated,omitempty"`
	Title        string     `json:"title,omitempty"`
	Columns      []float64  `json:"columns,omitempty"`
	Rules        []float64  `json:"rules,omitempty"`
	Header       []string   `json:"header,omitempty"`
	Rows         [][]string `json:"rows,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// NewRecord converts a result
func NewRecord(r engine.Result) Record {
	rec := Record{
		Run:          r.Run.String(),
		Section:      r.Section.Index,
		StartPage:    r.Section.StartPage,
		EndPage:      r.Section.EndPage,
		Unterminated: r.Section.Unterminated,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
		return rec
	}
	rec.Title = r.Table.Title
	rec.Columns = r.Table.Columns
	rec.Rules = r.Table.Rules
	rec.Header = r.Table.Header
	rec.Rows = r.Table.Rows
	return rec
}

// JSON writes all results as one indented array
func JSON(w io.Writer, results []engine.Result) error {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, NewRecord(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// JSONLines writes one JSON object per result and line
func JSONLines(w io.Writer, results []engine.Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(NewRecord(r)); err != nil {
			return err
		}
	}
	return nil
}
