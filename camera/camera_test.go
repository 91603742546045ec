package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)

	if cam.OffsetX != 0 || cam.OffsetY != 0 {
		t.Errorf("expected offset (0, 0), got (%f, %f)", cam.OffsetX, cam.OffsetY)
	}
	if cam.Smoothing <= 0 || cam.Smoothing > 1 {
		t.Errorf("smoothing %f out of range", cam.Smoothing)
	}
}

func TestSnapCentersTarget(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)
	cam.Snap(2000, 2000)

	sx, sy := cam.WorldToScreen(2000, 2000)
	if math.Abs(sx-640) > 0.01 || math.Abs(sy-360) > 0.01 {
		t.Errorf("expected target at screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestUpdateEasesTowardTarget(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)
	cam.Snap(2000, 2000)
	start := cam.OffsetX

	cam.Update(2500, 2000)

	want := 640 - 2500.0
	if cam.OffsetX <= want || cam.OffsetX >= start {
		t.Errorf("offset %f should sit between target %f and start %f", cam.OffsetX, want, start)
	}

	// Repeated updates converge.
	for i := 0; i < 100; i++ {
		cam.Update(2500, 2000)
	}
	if math.Abs(cam.OffsetX-want) > 0.5 {
		t.Errorf("offset did not converge: %f, want %f", cam.OffsetX, want)
	}
}

func TestOffsetClampedAtWorldEdges(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)

	// Target at the top-left corner: offset pins to 0.
	for i := 0; i < 50; i++ {
		cam.Update(0, 0)
	}
	if cam.OffsetX != 0 || cam.OffsetY != 0 {
		t.Errorf("corner target offset = (%f, %f), want (0, 0)", cam.OffsetX, cam.OffsetY)
	}

	// Target at the bottom-right corner: the eased offset converges onto
	// -(world - viewport) but never dips past it.
	for i := 0; i < 200; i++ {
		cam.Update(4000, 4000)
		if cam.OffsetX < -(4000-1280) || cam.OffsetY < -(4000-720) {
			t.Fatalf("offset past the far clamp: (%f, %f)", cam.OffsetX, cam.OffsetY)
		}
	}
	if math.Abs(cam.OffsetX-(-(4000-1280.0))) > 1e-6 || math.Abs(cam.OffsetY-(-(4000-720.0))) > 1e-6 {
		t.Errorf("far corner offset = (%f, %f), want about (%f, %f)",
			cam.OffsetX, cam.OffsetY, -(4000 - 1280.0), -(4000 - 720.0))
	}
}

func TestOffsetNeverPositive(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)
	cam.Snap(3500, 3500)

	// Glide back toward the origin corner and check every intermediate step.
	for i := 0; i < 100; i++ {
		cam.Update(100, 100)
		if cam.OffsetX > 0 || cam.OffsetY > 0 {
			t.Fatalf("offset went positive mid-glide: (%f, %f)", cam.OffsetX, cam.OffsetY)
		}
	}
}

func TestWorldSmallerThanViewport(t *testing.T) {
	cam := New(1280, 720, 500, 500)
	cam.Snap(250, 250)

	if cam.OffsetX != 0 || cam.OffsetY != 0 {
		t.Errorf("small world offset = (%f, %f), want (0, 0)", cam.OffsetX, cam.OffsetY)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)
	cam.Snap(2000, 2000)

	testCases := []struct{ sx, sy float64 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(sx-tc.sx) > 0.01 || math.Abs(sy-tc.sy) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)
	cam.Snap(2000, 2000)

	if !cam.IsVisible(2000, 2000, 10) {
		t.Error("target under the camera should be visible")
	}
	if cam.IsVisible(3500, 3500, 10) {
		t.Error("far point should not be visible")
	}
	// Just off the left edge but with a radius that crosses it.
	if !cam.IsVisible(2000-640-50, 2000, 100) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestResizeReclamps(t *testing.T) {
	cam := New(1280, 720, 4000, 4000)
	for i := 0; i < 200; i++ {
		cam.Update(4000, 4000)
	}

	cam.Resize(2000, 1000)
	if cam.OffsetX < -(4000-2000) || cam.OffsetY < -(4000-1000) {
		t.Errorf("offset not re-clamped after resize: (%f, %f)", cam.OffsetX, cam.OffsetY)
	}
}
