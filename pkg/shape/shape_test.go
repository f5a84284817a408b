package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBox(t *testing.T, x0, y0, x1, y1 float64) Shape {
	t.Helper()
	s, err := NewBox(x0, y0, x1, y1)
	require.NoError(t, err)
	return s
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name       string
		shape      Shape
		line       bool
		horizontal bool
		vertical   bool
	}{
		{"horizontal rule", mustBox(t, 0, 10, 383, 10.5), true, true, false},
		{"zero height rule", mustBox(t, 0, 10, 383, 10), true, true, false},
		{"vertical rule", mustBox(t, 50, 0, 50.4, 200), true, false, true},
		{"rectangle", mustBox(t, 0, 0, 100, 40), false, false, false},
		{"small square", mustBox(t, 0, 0, 1, 1), true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.shape
			assert.Equal(t, tt.line, s.IsLine(DefaultMaxLineWidth))
			assert.Equal(t, tt.horizontal, s.IsHorizontalLine(DefaultMaxLineWidth))
			assert.Equal(t, tt.vertical, s.IsVerticalLine(DefaultMaxLineWidth))
			assert.Equal(t, !s.IsLine(DefaultMaxLineWidth), s.IsRectangle(DefaultMaxLineWidth))
			assert.False(t, s.IsText())
		})
	}
}

func TestLineRectangleComplement(t *testing.T) {
	for w := 0.25; w < 6; w += 0.25 {
		for h := 0.25; h < 6; h += 0.25 {
			s := mustBox(t, 0, 0, w, h)
			for _, limit := range []float64{0.5, 1, 2, 3} {
				assert.Equal(t, s.IsLine(limit), !s.IsRectangle(limit))
				if s.IsHorizontalLine(limit) && s.IsVerticalLine(limit) {
					assert.Less(t, maxf(w, h), limit)
				}
			}
		}
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func TestTextShape(t *testing.T) {
	s, err := NewText(0, 0, 40, 1, "Vcc")
	require.NoError(t, err)

	assert.True(t, s.IsText())
	// degenerate text still reports as a horizontal line geometrically
	assert.True(t, s.IsHorizontalLine(DefaultMaxLineWidth))
	assert.Equal(t, "Vcc", s.Text)
}

func TestMalformedGeometry(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		make   func() (Shape, error)
	}{
		{"negative width", "negative width", func() (Shape, error) { return NewBox(10, 0, 5, 5) }},
		{"negative height", "negative height", func() (Shape, error) { return NewBox(0, 10, 5, 5) }},
		{"degenerate point", "degenerate point", func() (Shape, error) { return NewBox(3, 3, 3, 3) }},
		{"empty text", "text shape without text", func() (Shape, error) { return NewText(0, 0, 10, 10, "") }},
		{"NaN", "non-finite coordinate", func() (Shape, error) { return NewBox(0, 0, math.NaN(), 1) }},
		{"positive infinity", "non-finite coordinate", func() (Shape, error) { return NewBox(0, 0, math.Inf(1), 1) }},
		{"negative infinity", "non-finite coordinate", func() (Shape, error) { return NewText(math.Inf(-1), 0, 10, 1, "Vcc") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.make()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedGeometry))

			var geomErr *GeometryError
			require.ErrorAs(t, err, &geomErr)
			assert.Equal(t, tt.reason, geomErr.Reason)
		})
	}
}

func TestTranslate(t *testing.T) {
	s := mustBox(t, 0, 10, 100, 10.5)
	moved := s.Translate(-10)

	assert.Equal(t, 0.0, moved.Y0)
	assert.Equal(t, 0.5, moved.Y1)
	assert.Equal(t, s.Width(), moved.Width())
	assert.Equal(t, 10.0, s.Y0, "original must be unchanged")
}

func TestSortReadingOrder(t *testing.T) {
	a, _ := NewText(100, 12, 130, 18, "Value")
	b, _ := NewText(0, 12, 30, 18, "Name")
	c := mustBox(t, 0, 10, 383, 10.5)
	d, _ := NewText(0, 0, 80, 6, "Table 1: Specs")

	shapes := []Shape{a, b, c, d}
	SortReadingOrder(shapes)

	assert.Equal(t, []Shape{d, c, b, a}, shapes)
}

func TestDescribe(t *testing.T) {
	rule := mustBox(t, 0, 10, 383, 10.5)
	assert.Contains(t, rule.String(), "Horizontal Line")

	text, _ := NewText(0, 0, 10, 8, "Vcc")
	assert.Contains(t, text.String(), `"Vcc"`)

	rect := mustBox(t, 0, 0, 50, 50)
	assert.Contains(t, rect.String(), "Rectangle")
}
