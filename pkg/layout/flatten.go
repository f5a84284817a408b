package layout

import (
	"strings"

	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

// Walk visits the tree depth-first in document order with an explicit stack.
// fn is called for every node below root; returning false stops the walk.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}

	stack := make([]*Node, 0, len(root.Children))
	pushReversed := func(children []*Node) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	pushReversed(root.Children)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if !fn(n) {
			return
		}
		if n.Kind.IsAggregate() {
			// put contents of aggregate object onto the stack
			pushReversed(n.Children)
		}
	}
}

// Flatten converts the page tree into its leaf shapes in document order.
// Leaves are re-based so y grows downward from the top of a page of the
// given height. Leaves that violate the shape invariants are skipped and
// returned in rejected; flattening itself never fails.
func Flatten(root *Node, pageHeight float64) (shapes []shape.Shape, rejected []error) {
	Walk(root, func(n *Node) bool {
		if !n.Kind.IsLeaf() {
			return true
		}
		s, err := toShape(n, pageHeight)
		if err != nil {
			rejected = append(rejected, err)
			return true
		}
		shapes = append(shapes, s)
		return true
	})
	return shapes, rejected
}

// FlattenPage flattens a page using its own height
func FlattenPage(p *Page) ([]shape.Shape, []error) {
	return Flatten(p.Root, p.Height)
}

func toShape(n *Node, pageHeight float64) (shape.Shape, error) {
	y0 := pageHeight - n.Y1
	y1 := pageHeight - n.Y0
	if n.Kind == KindHorizontalText {
		return shape.NewText(n.X0, y0, n.X1, y1, strings.TrimSpace(n.Text))
	}
	return shape.NewBox(n.X0, y0, n.X1, y1)
}
