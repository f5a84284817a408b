package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(x, y, size float64, s string) []Glyph {
	glyphs := make([]Glyph, 0, len(s))
	for _, r := range s {
		glyphs = append(glyphs, Glyph{Font: "Helvetica", Size: size, X: x, Y: y, W: size * 0.5, S: string(r)})
		x += size * 0.5
	}
	return glyphs
}

func runTexts(boxes []*Node) []string {
	var out []string
	for _, b := range boxes {
		for _, run := range b.Children {
			out = append(out, run.Text)
		}
	}
	return out
}

func TestBuildRunsSplitsCells(t *testing.T) {
	var glyphs []Glyph
	glyphs = append(glyphs, word(100, 700, 6, "Value")...)
	glyphs = append(glyphs, word(0, 700, 6, "Name")...)

	boxes := BuildTextBoxes(glyphs, DefaultBuildOptions())
	assert.Equal(t, []string{"Name", "Value"}, runTexts(boxes))
	assert.Len(t, boxes, 2)
}

func TestBuildRunsInsertsWordSpaces(t *testing.T) {
	var glyphs []Glyph
	glyphs = append(glyphs, word(0, 700, 6, "3.3")...)
	glyphs = append(glyphs, Glyph{Size: 6, X: 9, Y: 700, W: 3, S: " "})
	glyphs = append(glyphs, word(11, 700, 6, "V")...)

	boxes := BuildTextBoxes(glyphs, DefaultBuildOptions())
	assert.Equal(t, []string{"3.3 V"}, runTexts(boxes))
}

func TestBuildBoxesStacksLines(t *testing.T) {
	var glyphs []Glyph
	glyphs = append(glyphs, word(0, 700, 6, "Supply")...)
	glyphs = append(glyphs, word(0, 693, 6, "voltage")...)
	glyphs = append(glyphs, word(0, 600, 6, "Note")...)

	boxes := BuildTextBoxes(glyphs, DefaultBuildOptions())
	require.Len(t, boxes, 2)
	assert.Equal(t, KindTextBox, boxes[0].Kind)
	require.Len(t, boxes[0].Children, 2)
	assert.Equal(t, "Supply", boxes[0].Children[0].Text)
	assert.Equal(t, "voltage", boxes[0].Children[1].Text)
	assert.Equal(t, "Note", boxes[1].Children[0].Text)

	// the box covers both lines
	assert.InDelta(t, 693-1.2, boxes[0].Y0, 1e-9)
	assert.InDelta(t, 700+4.8, boxes[0].Y1, 1e-9)
}

func TestBuildNormalizesText(t *testing.T) {
	glyphs := []Glyph{
		{Size: 6, X: 0, Y: 700, W: 3, S: "ﬁ"},
		{Size: 6, X: 3, Y: 700, W: 3, S: "ll"},
	}
	boxes := BuildTextBoxes(glyphs, DefaultBuildOptions())
	assert.Equal(t, []string{"fill"}, runTexts(boxes))
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, BuildTextBoxes(nil, DefaultBuildOptions()))
	assert.Empty(t, BuildTextBoxes([]Glyph{{Size: 6, S: " "}}, DefaultBuildOptions()))
}
