// Package table rebuilds a table's title, header and grid from the shapes
// of one section.
package table

import (
	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

// Cell addresses a (row band, column band) pair. Row 0 is the header band.
type Cell struct {
	Row int
	Col int
}

// Table is the reconstructed grid of one section
type Table struct {
	Title      string
	Columns    []float64     // left edge, header x0s in encounter order, right edge
	Rules      []float64     // y center of every row rule, header rule first
	Separators []shape.Shape // synthesized vertical separators, one per column x
	HRules     []shape.Shape
	Header     []string
	Rows       [][]string // body rows, one per band below the header
	Cells      map[Cell]string
}

// NumCols returns the number of column bands
func (t *Table) NumCols() int {
	return max(len(t.Columns)-1, 0)
}

// NumRowBands returns the number of row bands including the header band
func (t *Table) NumRowBands() int {
	return max(len(t.Rules)-1, 0)
}

// Records returns the header followed by the body rows
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	records = append(records, t.Rows...)
	return records
}
