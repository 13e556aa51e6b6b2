package geometry

// Corner indices of a Quad in canonical order.
const (
	TopLeft = iota
	BottomLeft
	BottomRight
	TopRight
)

// Quad is an ordered set of exactly four corners. The canonical order is
// top-left, bottom-left, bottom-right, top-right.
type Quad [4]Point2D

func (q Quad) TopLeft() Point2D     { return q[TopLeft] }
func (q Quad) BottomLeft() Point2D  { return q[BottomLeft] }
func (q Quad) BottomRight() Point2D { return q[BottomRight] }
func (q Quad) TopRight() Point2D    { return q[TopRight] }

// Points returns the corners as a slice.
func (q Quad) Points() []Point2D {
	return []Point2D{q[0], q[1], q[2], q[3]}
}

// Shift cyclically rotates the corner list so that result[i] = q[i+k].
func (q Quad) Shift(k int) Quad {
	k = ((k % 4) + 4) % 4
	var r Quad
	for i := range q {
		r[i] = q[(i+k)%4]
	}
	return r
}

// Normalized returns the corners wound top-left → bottom-left → bottom-right
// → top-right (negative signed area in image coordinates), starting at the
// topmost corner (leftmost on ties).
func (q Quad) Normalized() Quad {
	r := q
	if SignedArea(r.Points()) > 0 {
		r = Quad{q[0], q[3], q[2], q[1]}
	}
	start := 0
	for i := 1; i < 4; i++ {
		if r[i].Y < r[start].Y || (r[i].Y == r[start].Y && r[i].X < r[start].X) {
			start = i
		}
	}
	return r.Shift(start)
}

// Ordered applies the canonical ordering rule: when the second corner lies
// right of the fourth the list is rotated by one position. A canonical quad
// is returned unchanged.
func (q Quad) Ordered() Quad {
	if q[1].X > q[3].X {
		return q.Shift(3)
	}
	return q
}

// SideLengths returns |q0q1|, |q1q2|, |q2q3|, |q3q0|.
func (q Quad) SideLengths() [4]float64 {
	var s [4]float64
	for i := range q {
		s[i] = q[i].Distance(q[(i+1)%4])
	}
	return s
}

// IsFinite reports whether every corner has finite coordinates.
func (q Quad) IsFinite() bool {
	for _, p := range q {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}
