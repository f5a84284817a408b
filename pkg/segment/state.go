// Package segment partitions a stream of shapes in reading order into
// sections, one per logical table. Boundaries come from caller supplied
// predicates; the segmenter only accumulates and translates.
package segment

import (
	"errors"
	"fmt"

	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

// ErrUnterminatedSection reports a section closed by the end of input
// rather than by an end boundary
var ErrUnterminatedSection = errors.New("unterminated section")

// Boundary says where a predicate places a section boundary relative to
// the shape it was asked about
type Boundary int

const (
	// NoBoundary means the shape is not a boundary
	NoBoundary Boundary = iota
	// Before places the boundary before the shape; the shape belongs to
	// the following region
	Before
	// After places the boundary after the shape; the shape belongs to the
	// preceding region
	After
)

func (b Boundary) String() string {
	switch b {
	case NoBoundary:
		return "none"
	case Before:
		return "before"
	case After:
		return "after"
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

// Predicates decide section boundaries
type Predicates interface {
	SectionStart(s shape.Shape) Boundary
	SectionEnd(s shape.Shape) Boundary
}

// Section is a closed run of shapes belonging to one table
type Section struct {
	Index        int // 0-based, document order
	StartPage    int
	EndPage      int
	Unterminated bool // closed by Flush
	Shapes       []shape.Shape
}

// Stats counts what happened to every shape seen. Seen always equals
// Discarded plus Appended.
type Stats struct {
	Seen      int
	Discarded int
	Appended  int
}

// State is the segmenter state threaded through Step. The buffer is shared
// between a state and the one returned from it, so callers must continue
// from the returned value only.
type State struct {
	Inside  bool
	YOffset float64
	Page    int
	Buffer  []shape.Shape
	Stats   Stats

	startPage    int
	nextIndex    int
	pendingBreak bool
}

// Step applies one shape to the state. It returns the section closed by the
// shape, if any.
func Step(st State, b shape.Shape, p Predicates) (State, *Section) {
	st.Stats.Seen++

	if st.Inside {
		switch p.SectionEnd(b) {
		case After:
			st.append(b)
			closed := st.close(false)
			st.YOffset = -b.Y1
			return st, closed
		case Before:
			closed := st.close(false)
			st.YOffset = -b.Y0
			st = stepOutside(st, b, p)
			return st, closed
		default:
			st.append(b)
			return st, nil
		}
	}

	return stepOutside(st, b, p), nil
}

func stepOutside(st State, b shape.Shape, p Predicates) State {
	switch p.SectionStart(b) {
	case Before:
		st.open()
		st.YOffset = -b.Y0
		st.append(b)
	case After:
		st.open()
		st.YOffset = -b.Y1
		st.Stats.Discarded++
	default:
		st.Stats.Discarded++
	}
	return st
}

// PageBreak prepares the state for the next page. Outside a section the
// offset resets; inside, the first shape appended on the new page is placed
// directly below the content gathered so far.
func PageBreak(st State) State {
	if st.Inside {
		st.pendingBreak = true
	} else {
		st.YOffset = 0
	}
	st.Page++
	return st
}

// Flush closes a section left open at the end of input. The section is
// marked Unterminated.
func Flush(st State) (State, *Section) {
	if !st.Inside {
		return st, nil
	}
	return st, st.close(true)
}

func (st *State) open() {
	st.Inside = true
	st.Buffer = nil
	st.startPage = st.Page
	st.pendingBreak = false
}

func (st *State) append(b shape.Shape) {
	if st.pendingBreak {
		st.YOffset = bottom(st.Buffer) - b.Y0
		st.pendingBreak = false
	}
	st.Buffer = append(st.Buffer, b.Translate(st.YOffset))
	st.Stats.Appended++
}

func (st *State) close(unterminated bool) *Section {
	sec := &Section{
		Index:        st.nextIndex,
		StartPage:    st.startPage,
		EndPage:      st.Page,
		Unterminated: unterminated,
		Shapes:       st.Buffer,
	}
	st.nextIndex++
	st.Inside = false
	st.Buffer = nil
	st.pendingBreak = false
	return sec
}

func bottom(shapes []shape.Shape) float64 {
	var y float64
	for _, s := range shapes {
		y = max(y, s.Y1)
	}
	return y
}
