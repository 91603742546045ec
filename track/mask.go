package track

import (
	"math"
	"math/bits"
)

// Mask is the binary collision surface of a track. A set bit means the cell
// is drivable; everything else, including any sample outside the bounds, is
// wall. Queries outside the grid fail closed.
type Mask struct {
	w, h  int
	words []uint64
}

// NewMask creates an all-wall mask of the given dimensions.
func NewMask(w, h int) *Mask {
	return &Mask{
		w:     w,
		h:     h,
		words: make([]uint64, (w*h+63)/64),
	}
}

// Width returns the mask width in cells.
func (m *Mask) Width() int { return m.w }

// Height returns the mask height in cells.
func (m *Mask) Height() int { return m.h }

// At reports whether the cell at (x, y) is drivable.
// Out-of-bounds coordinates read as wall.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	idx := y*m.w + x
	return m.words[idx/64]&(1<<(idx%64)) != 0
}

func (m *Mask) set(x, y int) {
	idx := y*m.w + x
	m.words[idx/64] |= 1 << (idx % 64)
}

// FillDisc marks every cell within radius r of (cx, cy) as drivable,
// clipped to the mask bounds.
func (m *Mask) FillDisc(cx, cy, r float64) {
	minY := int(math.Floor(cy - r))
	maxY := int(math.Ceil(cy + r))
	if minY < 0 {
		minY = 0
	}
	if maxY >= m.h {
		maxY = m.h - 1
	}
	for y := minY; y <= maxY; y++ {
		dy := float64(y) - cy
		span := r*r - dy*dy
		if span < 0 {
			continue
		}
		half := math.Sqrt(span)
		minX := int(math.Floor(cx - half))
		maxX := int(math.Ceil(cx + half))
		if minX < 0 {
			minX = 0
		}
		if maxX >= m.w {
			maxX = m.w - 1
		}
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			if dx*dx+dy*dy <= r*r {
				m.set(x, y)
			}
		}
	}
}

// StrokeLoop rasterizes a closed polyline as a thick stroke by stamping
// discs of the given radius along it. Stamps are laid down at half-radius
// arc-length intervals, interpolated along each segment, so consecutive
// discs overlap well past their centers regardless of how far apart the
// polyline vertices sit.
func (m *Mask) StrokeLoop(pts []Point, radius float64) {
	if len(pts) == 0 || radius <= 0 {
		return
	}
	spacing := radius / 2
	m.FillDisc(pts[0].X, pts[0].Y, radius)
	carry := 0.0
	for i := 1; i <= len(pts); i++ {
		a := pts[i-1]
		b := pts[i%len(pts)]
		seg := b.Dist(a)
		if seg == 0 {
			continue
		}
		for d := spacing - carry; d <= seg; d += spacing {
			t := d / seg
			m.FillDisc(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, radius)
		}
		carry = math.Mod(carry+seg, spacing)
	}
}

// CountDrivable returns the number of drivable cells.
func (m *Mask) CountDrivable() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}
