package layout

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

const pageHeight = 800.0

func text(x0, y0, x1, y1 float64, s string) *Node {
	return &Node{Kind: KindHorizontalText, X0: x0, Y0: y0, X1: x1, Y1: y1, Text: s}
}

func line(x0, y0, x1, y1 float64) *Node {
	return &Node{Kind: KindLine, X0: x0, Y0: y0, X1: x1, Y1: y1}
}

func samplePage() *Node {
	caption := NewGroup(KindTextBox, NewGroup(KindTextLine, text(0, 790, 80, 800, "Table 1: Specs")))
	rule := line(0, 789.5, 383, 790)
	header := NewGroup(KindGroup,
		NewGroup(KindTextBox, text(0, 782, 30, 788, "Name")),
		NewGroup(KindTextBox, text(100, 782, 130, 788, "Value")),
	)
	decoration := &Node{Kind: KindImage, X0: 400, Y0: 700, X1: 500, Y1: 800}
	return NewGroup(KindGroup, caption, rule, NewGroup(KindFigure, header, decoration))
}

func TestFlattenDocumentOrder(t *testing.T) {
	shapes, rejected := Flatten(samplePage(), pageHeight)
	require.Empty(t, rejected)
	require.Len(t, shapes, 4)

	assert.Equal(t, "Table 1: Specs", shapes[0].Text)
	assert.True(t, shapes[1].IsHorizontalLine(shape.DefaultMaxLineWidth))
	assert.Equal(t, "Name", shapes[2].Text)
	assert.Equal(t, "Value", shapes[3].Text)
}

func TestFlattenRebasesYAxis(t *testing.T) {
	shapes, _ := Flatten(samplePage(), pageHeight)

	caption := shapes[0]
	assert.Equal(t, 0.0, caption.Y0)
	assert.Equal(t, 10.0, caption.Y1)

	rule := shapes[1]
	assert.Equal(t, 10.0, rule.Y0)
	assert.Equal(t, 10.5, rule.Y1)
}

func TestFlattenIdempotent(t *testing.T) {
	root := samplePage()
	first, _ := Flatten(root, pageHeight)
	second, _ := Flatten(root, pageHeight)
	assert.Equal(t, first, second)

	// Regrouping that keeps document order flattens the same way
	var leaves []*Node
	Walk(root, func(n *Node) bool {
		if n.Kind.IsLeaf() {
			leaves = append(leaves, n)
		}
		return true
	})
	regrouped := NewGroup(KindGroup, leaves...)
	third, _ := Flatten(regrouped, pageHeight)
	assert.Equal(t, first, third)
}

func TestFlattenRejectsMalformedLeaves(t *testing.T) {
	root := NewGroup(KindGroup,
		text(0, 0, 10, 10, "ok"),
		&Node{Kind: KindLine, X0: 5, Y0: 5, X1: 5, Y1: 5},
		text(0, 20, 10, 30, "   "),
		line(0, 40, 100, 40.5),
	)

	shapes, rejected := Flatten(root, pageHeight)
	assert.Len(t, shapes, 2)
	require.Len(t, rejected, 2)
	for _, err := range rejected {
		assert.True(t, errors.Is(err, shape.ErrMalformedGeometry))
	}
}

func TestNilChildren(t *testing.T) {
	var root *Node
	require.NotPanics(t, func() {
		root = NewGroup(KindGroup, nil, line(0, 40, 100, 40.5), nil)
		root.Add(nil)
	})
	assert.Equal(t, 0.0, root.X0)
	assert.Equal(t, 40.0, root.Y0)
	assert.Equal(t, 100.0, root.X1)
	assert.Equal(t, 40.5, root.Y1)

	empty := NewGroup(KindFigure, nil)
	assert.Equal(t, Node{Kind: KindFigure, Children: []*Node{nil}}, *empty)

	shapes, rejected := Flatten(root, pageHeight)
	assert.Empty(t, rejected)
	assert.Len(t, shapes, 1)
}

func TestFlattenNonFiniteLeaf(t *testing.T) {
	root := NewGroup(KindGroup, line(0, 40, 100, 40.5))
	root.Children = append(root.Children, &Node{Kind: KindRect, X0: 0, Y0: 0, X1: math.NaN(), Y1: 1})

	shapes, rejected := Flatten(root, pageHeight)
	assert.Len(t, shapes, 1)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0], shape.ErrMalformedGeometry)
}

func TestFlattenDeepTree(t *testing.T) {
	root := NewGroup(KindGroup)
	cur := root
	for i := 0; i < 10000; i++ {
		child := &Node{Kind: KindGroup}
		cur.Children = append(cur.Children, child)
		cur = child
	}
	cur.Children = append(cur.Children, line(0, 0, 100, 0.5))

	shapes, rejected := Flatten(root, pageHeight)
	assert.Empty(t, rejected)
	assert.Len(t, shapes, 1)
}

func TestWalkStops(t *testing.T) {
	visited := 0
	Walk(samplePage(), func(n *Node) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}

func TestStaticSource(t *testing.T) {
	p1 := &Page{Number: 1, Height: pageHeight, Root: samplePage()}
	p2 := &Page{Number: 2, Height: pageHeight, Root: NewGroup(KindGroup)}
	src := NewStaticSource(p1, p2)
	ctx := context.Background()

	got, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, p1, got)

	got, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, p2, got)

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStaticSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStaticSource(&Page{}).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
