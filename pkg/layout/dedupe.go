package layout

import "math"

// FloatTolerance is the distance below which two coordinates are the same
const FloatTolerance = 0.1

// DeduplicateGraphics drops lines and rectangles that repeat an earlier one.
// Datasheet generators often stroke a rule twice (fill plus outline), which
// would otherwise show up as an empty row. Document order is kept.
func DeduplicateGraphics(nodes []*Node) []*Node {
	if len(nodes) < 2 {
		return nodes
	}

	result := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		duplicate := false
		if n.Kind == KindLine || n.Kind == KindRect {
			for _, kept := range result {
				if sameGraphic(kept, n) {
					duplicate = true
					break
				}
			}
		}
		if !duplicate {
			result = append(result, n)
		}
	}
	return result
}

func sameGraphic(a, b *Node) bool {
	return math.Abs(a.X0-b.X0) < FloatTolerance &&
		math.Abs(a.Y0-b.Y0) < FloatTolerance &&
		math.Abs(a.X1-b.X1) < FloatTolerance &&
		math.Abs(a.Y1-b.Y1) < FloatTolerance
}

// FilterPageBorder removes graphics that lie on the page edge, such as crop
// frames drawn around the whole page.
func FilterPageBorder(nodes []*Node, pageWidth, pageHeight float64) []*Node {
	result := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == KindRect &&
			math.Abs(n.X0) < 1 && math.Abs(n.Y0) < 1 &&
			math.Abs(n.X1-pageWidth) < 1 && math.Abs(n.Y1-pageHeight) < 1 {
			continue
		}
		atLeftEdge := math.Abs(n.X0) < 1 && math.Abs(n.X1) < 1
		atRightEdge := math.Abs(n.X0-pageWidth) < 1 && math.Abs(n.X1-pageWidth) < 1
		atTopEdge := math.Abs(n.Y0-pageHeight) < 1 && math.Abs(n.Y1-pageHeight) < 1
		atBottomEdge := math.Abs(n.Y0) < 1 && math.Abs(n.Y1) < 1
		if atLeftEdge || atRightEdge || atTopEdge || atBottomEdge {
			continue
		}
		result = append(result, n)
	}
	return result
}
