// Package layout holds the per-page layout tree produced from a PDF and
// flattens it into the ordered leaf shapes the segmenter consumes.
package layout

import "fmt"

// Kind discriminates layout tree nodes
type Kind int

const (
	KindOther Kind = iota
	// Aggregates
	KindGroup
	KindFigure
	KindTextBox
	KindTextLine
	// Leaves
	KindRect
	KindLine
	KindHorizontalText
	// Ignored primitives
	KindCurve
	KindImage
	KindChar
)

var kindNames = map[Kind]string{
	KindOther:          "other",
	KindGroup:          "group",
	KindFigure:         "figure",
	KindTextBox:        "textbox",
	KindTextLine:       "textline",
	KindRect:           "rect",
	KindLine:           "line",
	KindHorizontalText: "htext",
	KindCurve:          "curve",
	KindImage:          "image",
	KindChar:           "char",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsAggregate reports whether nodes of this kind only group other nodes
func (k Kind) IsAggregate() bool {
	switch k {
	case KindGroup, KindFigure, KindTextBox, KindTextLine:
		return true
	}
	return false
}

// IsLeaf reports whether nodes of this kind become shapes
func (k Kind) IsLeaf() bool {
	switch k {
	case KindRect, KindLine, KindHorizontalText:
		return true
	}
	return false
}

// Node is one element of a page's layout tree. Coordinates are PDF user
// space: origin bottom-left, y grows upward.
type Node struct {
	Kind     Kind
	X0       float64
	Y0       float64
	X1       float64
	Y1       float64
	Text     string
	Children []*Node
}

// NewGroup creates an aggregate node and sizes it to its children
func NewGroup(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind, Children: children}
	n.fit()
	return n
}

// Add appends children and grows the bounding box to cover them
func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
	n.fit()
}

// fit sizes n to its non-nil children; nil children are kept and skipped
// like Walk does
func (n *Node) fit() {
	sized := false
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if !sized {
			n.X0, n.Y0, n.X1, n.Y1 = c.X0, c.Y0, c.X1, c.Y1
			sized = true
			continue
		}
		n.X0 = min(n.X0, c.X0)
		n.Y0 = min(n.Y0, c.Y0)
		n.X1 = max(n.X1, c.X1)
		n.Y1 = max(n.Y1, c.Y1)
	}
}

// Page is the layout of one PDF page
type Page struct {
	Number int // 1-based
	Width  float64
	Height float64
	Root   *Node
}
