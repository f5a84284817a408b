package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectGraphics(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Node
	}{
		{
			name:    "stroked rule",
			content: "0.5 w 0 700 m 383 700 l S",
			want:    []Node{{Kind: KindLine, X0: 0, Y0: 700, X1: 383, Y1: 700}},
		},
		{
			name:    "filled rectangle",
			content: "0 0 1 rg 10 20 383 0.5 re f",
			want:    []Node{{Kind: KindRect, X0: 10, Y0: 20, X1: 393, Y1: 20.5}},
		},
		{
			name:    "stroked rectangle",
			content: "10 10 100 50 re S",
			want:    []Node{{Kind: KindRect, X0: 10, Y0: 10, X1: 110, Y1: 60}},
		},
		{
			name:    "transformed line",
			content: "q 1 0 0 1 0 100 cm 0 0 m 50 0 l S Q 0 0 m 0 10 l S",
			want: []Node{
				{Kind: KindLine, X0: 0, Y0: 100, X1: 50, Y1: 100},
				{Kind: KindLine, X0: 0, Y0: 0, X1: 0, Y1: 10},
			},
		},
		{
			name:    "curve",
			content: "0 0 m 10 10 20 10 30 0 c S",
			want:    []Node{{Kind: KindCurve, X0: 0, Y0: 0, X1: 30, Y1: 10}},
		},
		{
			name:    "text and discarded path are ignored",
			content: "BT /F1 12 Tf 72 700 Td (Table 1: Specs) Tj ET 0 0 m 10 0 l n",
			want:    nil,
		},
		{
			name:    "polyline",
			content: "0 0 m 10 0 l 10 5 l S",
			want: []Node{
				{Kind: KindLine, X0: 0, Y0: 0, X1: 10, Y1: 0},
				{Kind: KindLine, X0: 10, Y0: 0, X1: 10, Y1: 5},
			},
		},
		{
			name:    "rules filled in one batch",
			content: "0 100 383 0.5 re 0 200 383 0.5 re f",
			want: []Node{
				{Kind: KindRect, X0: 0, Y0: 100, X1: 383, Y1: 100.5},
				{Kind: KindRect, X0: 0, Y0: 200, X1: 383, Y1: 200.5},
			},
		},
		{
			name:    "stroked subpaths",
			content: "0 0 m 50 0 l 0 10 m 50 10 l S",
			want: []Node{
				{Kind: KindLine, X0: 0, Y0: 0, X1: 50, Y1: 0},
				{Kind: KindLine, X0: 0, Y0: 10, X1: 50, Y1: 10},
			},
		},
		{
			name:    "filled rule next to a glyph outline",
			content: "0 50 383 0.5 re 0 0 m 10 10 20 10 30 0 c f",
			want: []Node{
				{Kind: KindRect, X0: 0, Y0: 50, X1: 383, Y1: 50.5},
				{Kind: KindCurve, X0: 0, Y0: 0, X1: 30, Y1: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := CollectGraphics([]byte(tt.content))
			require.Len(t, nodes, len(tt.want))
			for i, n := range nodes {
				assert.Equal(t, tt.want[i], *n)
			}
		})
	}
}

func TestTokenizeSkipsStringsAndComments(t *testing.T) {
	tokens := tokenize([]byte("% comment\n(a (nested) \\) string) Tj <48656c6c6f> Tj /Name 1.5 re"))
	assert.Equal(t, []string{"()", "Tj", "<>", "Tj", "/Name", "1.5", "re"}, tokens)
}

func TestDeduplicateGraphics(t *testing.T) {
	nodes := []*Node{
		line(0, 10, 383, 10.5),
		text(0, 0, 10, 5, "x"),
		line(0.05, 10, 383, 10.5),
		line(0, 20, 383, 20.5),
	}

	got := DeduplicateGraphics(nodes)
	require.Len(t, got, 3)
	assert.Same(t, nodes[0], got[0])
	assert.Same(t, nodes[1], got[1])
	assert.Same(t, nodes[3], got[2])
}

func TestFilterPageBorder(t *testing.T) {
	frame := &Node{Kind: KindRect, X0: 0, Y0: 0, X1: 612, Y1: 792}
	leftEdge := line(0, 0, 0.5, 792)
	rule := line(50, 400, 433, 400.5)

	got := FilterPageBorder([]*Node{frame, leftEdge, rule}, 612, 792)
	require.Len(t, got, 1)
	assert.Same(t, rule, got[0])
}
