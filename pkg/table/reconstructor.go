package table

import (
	"math"
	"sort"
	"strings"

	"github.com/tidwall/rtree"

	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

// Options holds the datasheet specific constants of a reconstructor
type Options struct {
	MaxLineWidth     float64 // thickness below which a box is a line
	HeaderRuleLength float64 // expected width of the rule above the header
	RuleTolerance    float64 // allowed header rule length error; rules closer than this merge
	SeparatorWidth   float64 // width of synthesized column separators
	CellTolerance    float64 // slack when testing band containment
}

// DefaultOptions returns the constants of the LPC datasheet family
func DefaultOptions() Options {
	return Options{
		MaxLineWidth:     shape.DefaultMaxLineWidth,
		HeaderRuleLength: 383,
		RuleTolerance:    0.5,
		SeparatorWidth:   0.5,
		CellTolerance:    2,
	}
}

// Option modifies reconstructor options
type Option func(*Options)

// WithHeaderRuleLength sets the expected header rule width
func WithHeaderRuleLength(length float64) Option {
	return func(o *Options) {
		o.HeaderRuleLength = length
	}
}

// WithMaxLineWidth sets the line thickness threshold
func WithMaxLineWidth(width float64) Option {
	return func(o *Options) {
		o.MaxLineWidth = width
	}
}

// WithCellTolerance sets the band containment slack
func WithCellTolerance(tolerance float64) Option {
	return func(o *Options) {
		o.CellTolerance = tolerance
	}
}

// Reconstructor turns the shapes of a closed section into a Table.
// It holds no state between calls.
type Reconstructor struct {
	opts Options
}

// New creates a reconstructor from the default options plus overrides
func New(opts ...Option) *Reconstructor {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reconstructor{opts: o}
}

// NewWithOptions creates a reconstructor from a complete option set
func NewWithOptions(o Options) *Reconstructor {
	return &Reconstructor{opts: o}
}

// Options returns the reconstructor's settings
func (r *Reconstructor) Options() Options {
	return r.opts
}

// Reconstruct rebuilds a table from shapes in reading order. Structural
// problems are returned as *InvalidTableError, a text outside the grid as
// *OrphanCellError.
func (r *Reconstructor) Reconstruct(shapes []shape.Shape) (*Table, error) {
	t := &Table{}
	i := 0

	// Title: every text before the first structural shape
	var title []string
	for ; i < len(shapes) && shapes[i].IsText(); i++ {
		if s := strings.TrimSpace(shapes[i].Text); s != "" {
			title = append(title, s)
		}
	}
	t.Title = strings.Join(title, " ")

	if i >= len(shapes) {
		return nil, invalid(reasonHeaderRule, -1)
	}
	rule := shapes[i]
	if !r.isRule(rule) || math.Abs(rule.Width()-r.opts.HeaderRuleLength) > r.opts.RuleTolerance {
		return nil, invalid(reasonHeaderRule, i)
	}
	left, right := rule.X0, rule.X1
	t.HRules = append(t.HRules, rule)
	t.Rules = append(t.Rules, center(rule))
	i++

	if i >= len(shapes) {
		return nil, invalid(reasonHeaderText, -1)
	}
	if !shapes[i].IsText() {
		return nil, invalid(reasonHeaderText, i)
	}

	// Header row: texts in line with the first header cell. Cells of
	// different font sizes share a baseline but not a top, so the row is
	// put back in left-to-right order before taking column boundaries.
	first := shapes[i]
	var texts []shape.Shape
	for ; i < len(shapes) && shapes[i].IsText() && shapes[i].OverlapsVertically(first); i++ {
		h := shapes[i]
		if h.X0 < left-r.opts.CellTolerance || h.X0 >= right {
			return nil, invalid(reasonHeaderOutside, i)
		}
		texts = append(texts, h)
	}
	sort.SliceStable(texts, func(a, b int) bool { return texts[a].X0 < texts[b].X0 })
	columns := []float64{left}
	for _, h := range texts[1:] {
		columns = append(columns, h.X0)
	}
	t.Columns = append(columns, right)

	for ; i < len(shapes); i++ {
		s := shapes[i]
		switch {
		case s.IsText():
			texts = append(texts, s)
		case r.isRule(s):
			y := center(s)
			if math.Abs(y-t.Rules[len(t.Rules)-1]) <= r.opts.RuleTolerance {
				// double stroked rule
				continue
			}
			t.HRules = append(t.HRules, s)
			t.Rules = append(t.Rules, y)
		}
	}
	if len(t.Rules) < 2 {
		return nil, invalid(reasonClosingRule, -1)
	}

	t.Separators = r.separators(t)

	cells, err := r.assign(t, texts)
	if err != nil {
		return nil, err
	}
	t.Cells = cells

	t.Header = t.row(0)
	for band := 1; band < t.NumRowBands(); band++ {
		t.Rows = append(t.Rows, t.row(band))
	}
	return t, nil
}

// isRule reports whether a non-text shape is a horizontal rule. Dots are not.
func (r *Reconstructor) isRule(s shape.Shape) bool {
	return !s.IsText() && s.IsHorizontalLine(r.opts.MaxLineWidth) && !s.IsVerticalLine(r.opts.MaxLineWidth)
}

func center(s shape.Shape) float64 {
	return (s.Y0 + s.Y1) / 2
}

// separators synthesizes a vertical line at every column position spanning
// the first rule's top to the last rule's bottom
func (r *Reconstructor) separators(t *Table) []shape.Shape {
	top := t.HRules[0].Y0
	bottom := t.HRules[len(t.HRules)-1].Y1
	seps := make([]shape.Shape, 0, len(t.Columns))
	for _, x := range t.Columns {
		seps = append(seps, shape.Shape{X0: x, Y0: top, X1: x + r.opts.SeparatorWidth, Y1: bottom})
	}
	return seps
}

type band struct {
	cell           Cell
	x0, y0, x1, y1 float64
}

// assign places every text in the (row band, column band) containing it.
// Texts sharing a cell are joined with a space in reading order.
func (r *Reconstructor) assign(t *Table, texts []shape.Shape) (map[Cell]string, error) {
	var tr rtree.RTreeG[band]
	tol := r.opts.CellTolerance
	for row := 0; row < t.NumRowBands(); row++ {
		y0, y1 := t.Rules[row], t.Rules[row+1]
		for col := 0; col < t.NumCols(); col++ {
			x0, x1 := minmax(t.Columns[col], t.Columns[col+1])
			b := band{cell: Cell{Row: row, Col: col}, x0: x0, y0: y0, x1: x1, y1: y1}
			tr.Insert([2]float64{x0 - tol, y0 - tol}, [2]float64{x1 + tol, y1 + tol}, b)
		}
	}

	parts := make(map[Cell][]string)
	for _, s := range texts {
		var candidates []band
		tr.Search([2]float64{s.X0, s.Y0}, [2]float64{s.X1, s.Y1}, func(lo, hi [2]float64, b band) bool {
			if s.X0 >= lo[0] && s.Y0 >= lo[1] && s.X1 <= hi[0] && s.Y1 <= hi[1] {
				candidates = append(candidates, b)
			}
			return true
		})
		if len(candidates) == 0 {
			return nil, &OrphanCellError{Text: s.Text, X0: s.X0, Y0: s.Y0, X1: s.X1, Y1: s.Y1}
		}
		best := closest(candidates, s)
		parts[best] = append(parts[best], strings.TrimSpace(s.Text))
	}

	cells := make(map[Cell]string, len(parts))
	for c, p := range parts {
		cells[c] = strings.Join(p, " ")
	}
	return cells, nil
}

// closest picks the band whose untoleranced area holds most of the text.
// Ties go to the lowest row, then column, so the result does not depend on
// tree iteration order.
func closest(candidates []band, s shape.Shape) Cell {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].cell.Row != candidates[j].cell.Row {
			return candidates[i].cell.Row < candidates[j].cell.Row
		}
		return candidates[i].cell.Col < candidates[j].cell.Col
	})
	best, bestArea := candidates[0].cell, -1.0
	for _, b := range candidates {
		w := max(math.Min(s.X1, b.x1)-math.Max(s.X0, b.x0), 0)
		h := max(math.Min(s.Y1, b.y1)-math.Max(s.Y0, b.y0), 0)
		if area := w * h; area > bestArea {
			best, bestArea = b.cell, area
		}
	}
	return best
}

func minmax(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

func (t *Table) row(band int) []string {
	row := make([]string, t.NumCols())
	for col := range row {
		row[col] = t.Cells[Cell{Row: band, Col: col}]
	}
	return row
}
