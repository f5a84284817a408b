package layout

import (
	"bytes"
	"strconv"
)

// matrix is a PDF transformation matrix [a b c d e f]
type matrix struct {
	a, b, c, d, e, f float64
}

func identityMatrix() matrix {
	return matrix{a: 1, d: 1}
}

func multiplyMatrix(m1, m2 matrix) matrix {
	return matrix{
		a: m1.a*m2.a + m1.b*m2.c,
		b: m1.a*m2.b + m1.b*m2.d,
		c: m1.c*m2.a + m1.d*m2.c,
		d: m1.c*m2.b + m1.d*m2.d,
		e: m1.e*m2.a + m1.f*m2.c + m2.e,
		f: m1.e*m2.b + m1.f*m2.d + m2.f,
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m.a*x + m.c*y + m.e, m.b*x + m.d*y + m.f
}

type pathOp int

const (
	opMove pathOp = iota
	opLine
	opCurve
	opClose
)

type pathPoint struct {
	x, y float64
}

type pathElement struct {
	op     pathOp
	points []pathPoint // already in device space
}

// graphicsCollector interprets the path operators of a content stream and
// records the painted lines and rectangles. Text operators are skipped; text
// comes from the text backend.
type graphicsCollector struct {
	ctm   matrix
	stack []matrix
	path  []pathElement
	nodes []*Node
}

// CollectGraphics returns line, rectangle and curve leaves painted by a
// decoded page content stream, in painting order.
func CollectGraphics(content []byte) []*Node {
	gc := &graphicsCollector{ctm: identityMatrix()}
	var operands []string
	for _, token := range tokenize(content) {
		if isOperator(token) {
			gc.process(token, operands)
			operands = operands[:0]
			continue
		}
		operands = append(operands, token)
	}
	return gc.nodes
}

func (gc *graphicsCollector) process(op string, operands []string) {
	switch op {
	case "q":
		gc.stack = append(gc.stack, gc.ctm)
	case "Q":
		if len(gc.stack) > 0 {
			gc.ctm = gc.stack[len(gc.stack)-1]
			gc.stack = gc.stack[:len(gc.stack)-1]
		}
	case "cm":
		if f, ok := floats(operands, 6); ok {
			gc.ctm = multiplyMatrix(matrix{f[0], f[1], f[2], f[3], f[4], f[5]}, gc.ctm)
		}
	case "m", "l":
		if f, ok := floats(operands, 2); ok {
			x, y := gc.ctm.apply(f[0], f[1])
			kind := opLine
			if op == "m" {
				kind = opMove
			}
			gc.path = append(gc.path, pathElement{op: kind, points: []pathPoint{{x, y}}})
		}
	case "c":
		if f, ok := floats(operands, 6); ok {
			gc.curve(f[0], f[1], f[2], f[3], f[4], f[5])
		}
	case "v", "y":
		if f, ok := floats(operands, 4); ok {
			gc.curve(f[0], f[1], f[2], f[3], f[2], f[3])
		}
	case "h":
		gc.path = append(gc.path, pathElement{op: opClose})
	case "re":
		if f, ok := floats(operands, 4); ok {
			x, y, w, h := f[0], f[1], f[2], f[3]
			corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
			for i, c := range corners {
				px, py := gc.ctm.apply(c[0], c[1])
				kind := opLine
				if i == 0 {
					kind = opMove
				}
				gc.path = append(gc.path, pathElement{op: kind, points: []pathPoint{{px, py}}})
			}
			gc.path = append(gc.path, pathElement{op: opClose})
		}
	case "S", "s":
		gc.paint(true)
	case "f", "F", "f*", "B", "B*", "b", "b*":
		gc.paint(false)
	case "n":
		gc.path = nil
	}
}

func (gc *graphicsCollector) curve(x1, y1, x2, y2, x3, y3 float64) {
	ax, ay := gc.ctm.apply(x1, y1)
	bx, by := gc.ctm.apply(x2, y2)
	cx, cy := gc.ctm.apply(x3, y3)
	gc.path = append(gc.path, pathElement{op: opCurve, points: []pathPoint{{ax, ay}, {bx, by}, {cx, cy}}})
}

// paint turns the current path into leaves, one subpath at a time.
// Axis-aligned rectangles become a single rect whether stroked or filled;
// stroked segments become lines.
func (gc *graphicsCollector) paint(stroke bool) {
	defer func() { gc.path = nil }()
	for _, sub := range subpaths(gc.path) {
		gc.paintSubpath(sub, stroke)
	}
}

// subpaths splits a path at each moveto
func subpaths(path []pathElement) [][]pathElement {
	var out [][]pathElement
	start := 0
	for i, elem := range path {
		if elem.op == opMove && i > start {
			out = append(out, path[start:i])
			start = i
		}
	}
	if start < len(path) {
		out = append(out, path[start:])
	}
	return out
}

func (gc *graphicsCollector) paintSubpath(sub []pathElement, stroke bool) {
	if len(sub) < 2 {
		return
	}

	if x0, y0, x1, y1, ok := rectangleBounds(sub); ok {
		gc.nodes = append(gc.nodes, &Node{Kind: KindRect, X0: x0, Y0: y0, X1: x1, Y1: y1})
		return
	}
	if !stroke {
		// Complex filled shapes carry no table structure
		x0, y0, x1, y1 := subpathBounds(sub)
		gc.nodes = append(gc.nodes, &Node{Kind: KindCurve, X0: x0, Y0: y0, X1: x1, Y1: y1})
		return
	}

	var cur, start pathPoint
	for _, elem := range sub {
		switch elem.op {
		case opMove:
			cur, start = elem.points[0], elem.points[0]
		case opLine:
			end := elem.points[0]
			gc.addLine(cur, end)
			cur = end
		case opCurve:
			end := elem.points[2]
			pts := append([]pathPoint{cur}, elem.points...)
			x0, y0, x1, y1 := pointBounds(pts)
			gc.nodes = append(gc.nodes, &Node{Kind: KindCurve, X0: x0, Y0: y0, X1: x1, Y1: y1})
			cur = end
		case opClose:
			if cur != start {
				gc.addLine(cur, start)
			}
			cur = start
		}
	}
}

func (gc *graphicsCollector) addLine(a, b pathPoint) {
	if a == b {
		return
	}
	gc.nodes = append(gc.nodes, &Node{
		Kind: KindLine,
		X0:   min(a.x, b.x),
		Y0:   min(a.y, b.y),
		X1:   max(a.x, b.x),
		Y1:   max(a.y, b.y),
	})
}

// rectangleBounds checks whether a subpath is a closed axis-aligned
// quadrilateral: 1 moveto, 3 lineto and an optional close
func rectangleBounds(sub []pathElement) (x0, y0, x1, y1 float64, ok bool) {
	var pts []pathPoint
	for i, elem := range sub {
		switch elem.op {
		case opMove:
			if i != 0 {
				return 0, 0, 0, 0, false
			}
			pts = append(pts, elem.points[0])
		case opLine:
			pts = append(pts, elem.points[0])
		case opCurve:
			return 0, 0, 0, 0, false
		}
	}
	if len(pts) == 5 && pts[4] == pts[0] {
		pts = pts[:4]
	}
	if len(pts) != 4 {
		return 0, 0, 0, 0, false
	}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%4]
		if a.x != b.x && a.y != b.y {
			return 0, 0, 0, 0, false
		}
	}
	x0, y0, x1, y1 = pointBounds(pts)
	return x0, y0, x1, y1, true
}

func subpathBounds(sub []pathElement) (x0, y0, x1, y1 float64) {
	var pts []pathPoint
	for _, elem := range sub {
		pts = append(pts, elem.points...)
	}
	return pointBounds(pts)
}

func pointBounds(pts []pathPoint) (x0, y0, x1, y1 float64) {
	for i, p := range pts {
		if i == 0 {
			x0, x1, y0, y1 = p.x, p.x, p.y, p.y
			continue
		}
		x0 = min(x0, p.x)
		x1 = max(x1, p.x)
		y0 = min(y0, p.y)
		y1 = max(y1, p.y)
	}
	return
}

func floats(operands []string, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	// operators take the trailing operands
	operands = operands[len(operands)-n:]
	out := make([]float64, n)
	for i, s := range operands {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// isOperator reports whether a token is a content stream operator. Unknown
// operators still reset the operand stack.
func isOperator(token string) bool {
	if token == "" {
		return false
	}
	c := token[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '\'' || c == '"'
}

// tokenize splits a content stream into numbers, names and operators.
// Strings, hex strings, arrays and dictionaries are reduced to a single
// placeholder token since no graphics operator reads them.
func tokenize(content []byte) []string {
	var tokens []string
	r := bytes.NewReader(content)

	for r.Len() > 0 {
		b, _ := r.ReadByte()
		switch {
		case isWhitespace(b):
			continue
		case b == '%':
			skipComment(r)
		case b == '(':
			skipStringLiteral(r)
			tokens = append(tokens, "()")
		case b == '<':
			next, err := r.ReadByte()
			if err == nil && next == '<' {
				tokens = append(tokens, "<<")
				continue
			}
			if err == nil {
				_ = r.UnreadByte()
			}
			skipUntil(r, '>')
			tokens = append(tokens, "<>")
		case b == '>':
			next, err := r.ReadByte()
			if err == nil && next != '>' {
				_ = r.UnreadByte()
			}
			tokens = append(tokens, ">>")
		case b == '[' || b == ']' || b == '{' || b == '}':
			tokens = append(tokens, string(b))
		case b == '/':
			tokens = append(tokens, "/"+readToken(r))
		default:
			_ = r.UnreadByte()
			token := readToken(r)
			if token == "" {
				// stray delimiter such as ')'
				_, _ = r.ReadByte()
				continue
			}
			tokens = append(tokens, token)
			if token == "BI" {
				skipInlineImage(r)
			}
		}
	}

	return tokens
}

func readToken(r *bytes.Reader) string {
	var result []byte
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if isDelimiter(b) || isWhitespace(b) {
			_ = r.UnreadByte()
			break
		}
		result = append(result, b)
	}
	return string(result)
}

func skipStringLiteral(r *bytes.Reader) {
	depth := 1
	for r.Len() > 0 && depth > 0 {
		b, _ := r.ReadByte()
		switch b {
		case '\\':
			_, _ = r.ReadByte()
		case '(':
			depth++
		case ')':
			depth--
		}
	}
}

func skipUntil(r *bytes.Reader, end byte) {
	for r.Len() > 0 {
		if b, _ := r.ReadByte(); b == end {
			return
		}
	}
}

func skipComment(r *bytes.Reader) {
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if b == '\n' || b == '\r' {
			return
		}
	}
}

// skipInlineImage jumps past the binary data of BI ... ID <data> EI
func skipInlineImage(r *bytes.Reader) {
	var window [3]byte
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		window[0], window[1], window[2] = window[1], window[2], b
		if isWhitespace(window[0]) && window[1] == 'E' && window[2] == 'I' {
			return
		}
	}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}
