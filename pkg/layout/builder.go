package layout

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Glyph is one positioned piece of text as reported by a PDF text backend.
// X, Y is the baseline origin in PDF user space.
type Glyph struct {
	Font string
	Size float64
	X    float64
	Y    float64
	W    float64
	S    string
}

// BuildOptions tunes how glyphs are merged into text runs and boxes.
// The ratios are relative to the glyph size, like pdfminer's LAParams.
type BuildOptions struct {
	CharMargin  float64 // max gap between glyphs of one run
	WordMargin  float64 // gap above which a space is inserted
	LineOverlap float64 // min vertical overlap to share a line
	LineMargin  float64 // max gap between runs of one text box
}

// DefaultBuildOptions returns the tolerances used for datasheets
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		CharMargin:  2.0,
		WordMargin:  0.1,
		LineOverlap: 0.5,
		LineMargin:  0.5,
	}
}

type glyphBox struct {
	x0, y0, x1, y1 float64
	baseline       float64
	size           float64
	s              string
}

func (g Glyph) box() glyphBox {
	size := g.Size
	if size <= 0 {
		size = 1
	}
	// Baseline is typically at 80% of font height
	return glyphBox{
		x0:       g.X,
		y0:       g.Y - size*0.2,
		x1:       g.X + g.W,
		y1:       g.Y + size*0.8,
		baseline: g.Y,
		size:     size,
		s:        g.S,
	}
}

// BuildTextBoxes groups glyphs into horizontal text runs and the runs into
// text boxes. Runs of the same baseline separated by a wide gap stay apart,
// which keeps table cells as separate leaves.
func BuildTextBoxes(glyphs []Glyph, opts BuildOptions) []*Node {
	runs := buildRuns(glyphs, opts)
	return buildBoxes(runs, opts)
}

func buildRuns(glyphs []Glyph, opts BuildOptions) []*Node {
	boxes := make([]glyphBox, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			// Skip space characters as they're used for word separation
			continue
		}
		boxes = append(boxes, g.box())
	}
	if len(boxes) == 0 {
		return nil
	}

	// Sort top to bottom (PDF y grows upward), then left to right
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].baseline != boxes[j].baseline {
			return boxes[i].baseline > boxes[j].baseline
		}
		return boxes[i].x0 < boxes[j].x0
	})

	var runs []*Node
	var text strings.Builder
	cur := boxes[0]
	text.WriteString(cur.s)
	last := cur

	flush := func() {
		runs = append(runs, &Node{
			Kind: KindHorizontalText,
			X0:   cur.x0,
			Y0:   cur.y0,
			X1:   cur.x1,
			Y1:   cur.y1,
			Text: norm.NFKC.String(text.String()),
		})
		text.Reset()
	}

	for _, b := range boxes[1:] {
		gap := b.x0 - last.x1
		if sameLine(last, b, opts.LineOverlap) && gap <= opts.CharMargin*max(last.size, b.size) {
			if gap > opts.WordMargin*max(last.size, b.size) {
				text.WriteByte(' ')
			}
			text.WriteString(b.s)
			cur.x1 = max(cur.x1, b.x1)
			cur.y0 = min(cur.y0, b.y0)
			cur.y1 = max(cur.y1, b.y1)
			last = b
			continue
		}
		flush()
		cur, last = b, b
		text.WriteString(b.s)
	}
	flush()

	return runs
}

func sameLine(a, b glyphBox, overlap float64) bool {
	shared := math.Min(a.y1, b.y1) - math.Max(a.y0, b.y0)
	return shared >= overlap*math.Min(a.y1-a.y0, b.y1-b.y0)
}

func buildBoxes(runs []*Node, opts BuildOptions) []*Node {
	var boxes []*Node
	for _, run := range runs {
		var target *Node
		for _, box := range boxes {
			prev := box.Children[len(box.Children)-1]
			height := prev.Y1 - prev.Y0
			gap := prev.Y0 - run.Y1
			overlapsX := run.X0 < prev.X1 && prev.X0 < run.X1
			if overlapsX && gap >= -height*opts.LineOverlap && gap <= height*opts.LineMargin {
				target = box
				break
			}
		}
		if target == nil {
			boxes = append(boxes, NewGroup(KindTextBox, run))
			continue
		}
		target.Add(run)
	}
	return boxes
}
