// Package shape describes the classified geometric primitives found on a
// datasheet page: text runs, lines and rectangles.
package shape

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultMaxLineWidth is the thickness below which a box counts as a line
const DefaultMaxLineWidth = 2.0

// ErrMalformedGeometry is matched by every GeometryError
var ErrMalformedGeometry = errors.New("malformed geometry")

// GeometryError reports a primitive that violates the Shape invariants
type GeometryError struct {
	X0, Y0, X1, Y1 float64
	Reason         string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("malformed geometry @(%.2f,%.2f)->(%.2f,%.2f): %s", e.X0, e.Y0, e.X1, e.Y1, e.Reason)
}

// Is lets errors.Is match ErrMalformedGeometry
func (e *GeometryError) Is(target error) bool {
	return target == ErrMalformedGeometry
}

// Shape is an axis-aligned box in page coordinates with an optional text payload.
// Y grows downward on the page.
type Shape struct {
	X0   float64 // Left
	Y0   float64 // Top
	X1   float64 // Right
	Y1   float64 // Bottom
	Text string

	hasText bool
}

// NewBox creates a line or rectangle shape
func NewBox(x0, y0, x1, y1 float64) (Shape, error) {
	if err := validate(x0, y0, x1, y1); err != nil {
		return Shape{}, err
	}
	return Shape{X0: x0, Y0: y0, X1: x1, Y1: y1}, nil
}

// NewText creates a text run shape. The text must not be empty.
func NewText(x0, y0, x1, y1 float64, text string) (Shape, error) {
	if err := validate(x0, y0, x1, y1); err != nil {
		return Shape{}, err
	}
	if text == "" {
		return Shape{}, &GeometryError{X0: x0, Y0: y0, X1: x1, Y1: y1, Reason: "text shape without text"}
	}
	return Shape{X0: x0, Y0: y0, X1: x1, Y1: y1, Text: text, hasText: true}, nil
}

func validate(x0, y0, x1, y1 float64) error {
	for _, v := range [...]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &GeometryError{X0: x0, Y0: y0, X1: x1, Y1: y1, Reason: "non-finite coordinate"}
		}
	}
	switch {
	case x1 < x0:
		return &GeometryError{X0: x0, Y0: y0, X1: x1, Y1: y1, Reason: "negative width"}
	case y1 < y0:
		return &GeometryError{X0: x0, Y0: y0, X1: x1, Y1: y1, Reason: "negative height"}
	case x1 == x0 && y1 == y0:
		return &GeometryError{X0: x0, Y0: y0, X1: x1, Y1: y1, Reason: "degenerate point"}
	}
	return nil
}

// Width returns the horizontal extent
func (s Shape) Width() float64 {
	return s.X1 - s.X0
}

// Height returns the vertical extent
func (s Shape) Height() float64 {
	return s.Y1 - s.Y0
}

// IsText reports whether the shape carries a text payload
func (s Shape) IsText() bool {
	return s.hasText
}

// IsLine reports whether the thinner side is below maxLineWidth
func (s Shape) IsLine(maxLineWidth float64) bool {
	return min(s.Width(), s.Height()) < maxLineWidth
}

// IsHorizontalLine reports whether the height is below maxLineWidth
func (s Shape) IsHorizontalLine(maxLineWidth float64) bool {
	return s.Height() < maxLineWidth
}

// IsVerticalLine reports whether the width is below maxLineWidth
func (s Shape) IsVerticalLine(maxLineWidth float64) bool {
	return s.Width() < maxLineWidth
}

// IsRectangle returns true if this is not a line
func (s Shape) IsRectangle(maxLineWidth float64) bool {
	return !s.IsLine(maxLineWidth)
}

// Translate returns a copy moved down by dy
func (s Shape) Translate(dy float64) Shape {
	s.Y0 += dy
	s.Y1 += dy
	return s
}

// OverlapsVertically reports whether the two shapes share part of their y range
func (s Shape) OverlapsVertically(o Shape) bool {
	return s.Y0 < o.Y1 && o.Y0 < s.Y1
}

// Describe renders the shape the way the debug trace prints it
func (s Shape) Describe(maxLineWidth float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@(%.2f,%.2f)->(%.2f,%.2f) ", s.X0, s.Y0, s.X1, s.Y1)
	switch {
	case s.IsText():
		b.WriteString("Text")
	case s.IsHorizontalLine(maxLineWidth) && s.IsVerticalLine(maxLineWidth):
		b.WriteString("Dot")
	case s.IsHorizontalLine(maxLineWidth):
		b.WriteString("Horizontal Line")
	case s.IsVerticalLine(maxLineWidth):
		b.WriteString("Vertical Line")
	default:
		b.WriteString("Rectangle")
	}
	fmt.Fprintf(&b, " [%.2f x %.2f]", s.Width(), s.Height())
	if s.IsText() {
		fmt.Fprintf(&b, " %q", s.Text)
	}
	return b.String()
}

// String implements fmt.Stringer using DefaultMaxLineWidth
func (s Shape) String() string {
	return s.Describe(DefaultMaxLineWidth)
}

// SortReadingOrder sorts shapes top-to-bottom, then left-to-right.
// The sort is stable so shapes at the same position keep document order.
func SortReadingOrder(shapes []Shape) {
	sort.SliceStable(shapes, func(i, j int) bool {
		if shapes[i].Y0 != shapes[j].Y0 {
			return shapes[i].Y0 < shapes[j].Y0
		}
		return shapes[i].X0 < shapes[j].X0
	})
}
