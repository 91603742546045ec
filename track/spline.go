package track

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// minSplinePoints is the smallest control polygon a cubic fit accepts.
const minSplinePoints = 4

// splinePad is how many control points are wrapped around each end of the
// parameterization. The padding gives the cubic fit real neighbors on both
// sides of the seam, so the sampled loop closes without a visible kink.
const splinePad = 3

// periodicSpline fits a closed parametric cubic spline through the control
// polygon and samples it at `samples` evenly spaced parameter values.
// The input must be closed (last point equal to the first); the output is an
// implicitly closed polyline with no duplicated endpoint.
func periodicSpline(points []Point, samples int) ([]Point, error) {
	if len(points) < 2 || points[0] != points[len(points)-1] {
		return nil, fmt.Errorf("control polygon must be closed")
	}
	core := points[:len(points)-1]
	n := len(core)
	if n < minSplinePoints {
		return nil, fmt.Errorf("need at least %d control points, got %d", minSplinePoints, n)
	}
	if samples < n {
		return nil, fmt.Errorf("sample count %d below control point count %d", samples, n)
	}

	// Wrap the control polygon so the fit sees a periodic neighborhood.
	ext := make([]Point, 0, n+2*splinePad+1)
	for i := n - splinePad; i < n; i++ {
		ext = append(ext, core[i])
	}
	ext = append(ext, core...)
	for i := 0; i <= splinePad; i++ {
		ext = append(ext, core[i%n])
	}

	// Chord-length parameterization. Duplicate consecutive points would make
	// the parameter non-increasing, which the fit rejects; treat that as the
	// degenerate case the caller falls back from.
	ts := make([]float64, len(ext))
	xs := make([]float64, len(ext))
	ys := make([]float64, len(ext))
	xs[0], ys[0] = ext[0].X, ext[0].Y
	for i := 1; i < len(ext); i++ {
		d := ext[i].Dist(ext[i-1])
		if d == 0 {
			return nil, fmt.Errorf("degenerate control polygon: duplicate point at %d", i)
		}
		ts[i] = ts[i-1] + d
		xs[i], ys[i] = ext[i].X, ext[i].Y
	}

	var sx, sy interp.NaturalCubic
	if err := sx.Fit(ts, xs); err != nil {
		return nil, fmt.Errorf("fitting x spline: %w", err)
	}
	if err := sy.Fit(ts, ys); err != nil {
		return nil, fmt.Errorf("fitting y spline: %w", err)
	}

	// Sample only the core interval [t(pad), t(pad+n)); the endpoint is the
	// wrapped copy of the first point, so excluding it closes the loop.
	t0 := ts[splinePad]
	t1 := ts[splinePad+n]
	out := make([]Point, samples)
	for i := 0; i < samples; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(samples)
		out[i] = Point{X: sx.Predict(t), Y: sy.Predict(t)}
	}
	return out, nil
}
