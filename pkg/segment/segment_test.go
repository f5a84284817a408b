package segment

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

type captionPredicates struct{}

func (captionPredicates) SectionStart(s shape.Shape) Boundary {
	if s.IsText() && strings.HasPrefix(s.Text, "Table") {
		return Before
	}
	return NoBoundary
}

func (p captionPredicates) SectionEnd(s shape.Shape) Boundary {
	return p.SectionStart(s)
}

// markerPredicates opens after "BEGIN" and closes after "END"
type markerPredicates struct{}

func (markerPredicates) SectionStart(s shape.Shape) Boundary {
	if s.Text == "BEGIN" {
		return After
	}
	return NoBoundary
}

func (markerPredicates) SectionEnd(s shape.Shape) Boundary {
	if s.Text == "END" {
		return After
	}
	return NoBoundary
}

func txt(t *testing.T, x0, y0 float64, s string) shape.Shape {
	t.Helper()
	sh, err := shape.NewText(x0, y0, x0+30, y0+6, s)
	require.NoError(t, err)
	return sh
}

func hline(t *testing.T, y float64) shape.Shape {
	t.Helper()
	sh, err := shape.NewBox(0, y, 383, y+0.5)
	require.NoError(t, err)
	return sh
}

func run(st State, p Predicates, shapes ...shape.Shape) (State, []*Section) {
	var out []*Section
	for _, b := range shapes {
		var sec *Section
		st, sec = Step(st, b, p)
		if sec != nil {
			out = append(out, sec)
		}
	}
	return st, out
}

func TestStepOutsideDiscards(t *testing.T) {
	st, closed := run(State{}, captionPredicates{}, txt(t, 0, 0, "Features"), hline(t, 10))
	assert.False(t, st.Inside)
	assert.Empty(t, closed)
	assert.Equal(t, Stats{Seen: 2, Discarded: 2}, st.Stats)
}

func TestStepStartBeforeKeepsCaption(t *testing.T) {
	st, _ := run(State{}, captionPredicates{}, txt(t, 0, 0, "Intro"), txt(t, 0, 40, "Table 1: Specs"), hline(t, 50))

	require.True(t, st.Inside)
	require.Len(t, st.Buffer, 2)
	assert.Equal(t, "Table 1: Specs", st.Buffer[0].Text)
	assert.Equal(t, 0.0, st.Buffer[0].Y0, "section starts at zero")
	assert.Equal(t, 10.0, st.Buffer[1].Y0)
}

func TestStepEndBeforeReopens(t *testing.T) {
	st, closed := run(State{}, captionPredicates{},
		txt(t, 0, 0, "Table 1: Specs"),
		hline(t, 10),
		txt(t, 0, 100, "Table 2: Timing"),
		hline(t, 110),
	)

	require.Len(t, closed, 1)
	assert.Equal(t, 0, closed[0].Index)
	assert.Len(t, closed[0].Shapes, 2)
	assert.False(t, closed[0].Unterminated)

	require.True(t, st.Inside)
	require.Len(t, st.Buffer, 2)
	assert.Equal(t, "Table 2: Timing", st.Buffer[0].Text)
	assert.Equal(t, 0.0, st.Buffer[0].Y0)
	assert.Equal(t, 10.0, st.Buffer[1].Y0)
}

func TestStepAfterBoundaries(t *testing.T) {
	st, closed := run(State{}, markerPredicates{},
		txt(t, 0, 0, "BEGIN"),
		txt(t, 0, 10, "a"),
		txt(t, 0, 20, "END"),
		txt(t, 0, 30, "ignored"),
	)

	assert.False(t, st.Inside)
	require.Len(t, closed, 1)
	shapes := closed[0].Shapes
	require.Len(t, shapes, 2)
	assert.Equal(t, "a", shapes[0].Text)
	assert.Equal(t, 4.0, shapes[0].Y0, "offset is taken from the bottom of the start marker")
	assert.Equal(t, "END", shapes[1].Text)
	assert.Equal(t, -26.0, st.YOffset)
	assert.Equal(t, Stats{Seen: 4, Discarded: 2, Appended: 2}, st.Stats)
}

func TestPageBreakContinuation(t *testing.T) {
	seg := New(captionPredicates{}, nil)

	closed := seg.Feed(1, []shape.Shape{
		txt(t, 0, 700, "Table 1: Specs"),
		hline(t, 710),
		txt(t, 0, 712, "Name"),
		hline(t, 720),
	})
	assert.Empty(t, closed)

	closed = seg.Feed(2, []shape.Shape{
		txt(t, 0, 50, "Vcc"),
		hline(t, 60),
		txt(t, 0, 300, "Table 2: Timing"),
	})
	require.Len(t, closed, 1)

	sec := closed[0]
	assert.Equal(t, 1, sec.StartPage)
	assert.Equal(t, 2, sec.EndPage)
	require.Len(t, sec.Shapes, 6)

	for i := 1; i < len(sec.Shapes); i++ {
		assert.GreaterOrEqual(t, sec.Shapes[i].Y0, sec.Shapes[i-1].Y0, "coordinates stay monotone across the break")
	}
	// first shape of page 2 sits right below the last rule of page 1
	assert.Equal(t, sec.Shapes[3].Y1, sec.Shapes[4].Y0)
}

func TestPageBreakOutsideResetsOffset(t *testing.T) {
	st := State{YOffset: -42}
	st = PageBreak(st)
	assert.Equal(t, 0.0, st.YOffset)
	assert.Equal(t, 1, st.Page)
}

func TestFlushOnExhaustion(t *testing.T) {
	seg := New(captionPredicates{}, nil)
	seg.Feed(1, []shape.Shape{txt(t, 0, 0, "Table 1: Specs"), hline(t, 10)})

	sec, err := seg.Finish()
	require.NotNil(t, sec)
	assert.True(t, errors.Is(err, ErrUnterminatedSection))
	assert.True(t, sec.Unterminated)
	assert.Len(t, sec.Shapes, 2)
	assert.False(t, seg.Inside())

	sec, err = seg.Finish()
	assert.Nil(t, sec)
	assert.NoError(t, err)
}

func TestTotalCoverage(t *testing.T) {
	seg := New(captionPredicates{}, nil)
	pages := [][]shape.Shape{
		{txt(t, 0, 0, "Intro"), txt(t, 0, 20, "Table 1: A"), hline(t, 30), txt(t, 0, 40, "x")},
		{txt(t, 0, 0, "y"), txt(t, 0, 20, "Table 2: B"), hline(t, 30)},
		{txt(t, 0, 0, "z")},
	}

	var sections []*Section
	total := 0
	for i, shapes := range pages {
		total += len(shapes)
		sections = append(sections, seg.Feed(i+1, shapes)...)
	}
	if sec, _ := seg.Finish(); sec != nil {
		sections = append(sections, sec)
	}

	appended := 0
	for i, sec := range sections {
		assert.Equal(t, i, sec.Index)
		appended += len(sec.Shapes)
	}

	stats := seg.Stats()
	assert.Equal(t, total, stats.Seen)
	assert.Equal(t, stats.Seen, stats.Discarded+stats.Appended)
	assert.Equal(t, appended, stats.Appended)
	assert.Equal(t, 1, stats.Discarded)
}

func TestBoundaryString(t *testing.T) {
	assert.Equal(t, "none", NoBoundary.String())
	assert.Equal(t, "before", Before.String())
	assert.Equal(t, "after", After.String())
}
