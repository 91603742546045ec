// Package camera provides a 2D camera system for viewport control.
package camera

// Camera tracks a target through a bounded world by sliding a negative
// screen offset. The offset is clamped so the viewport never shows anything
// outside the world: 0 >= offset >= -(world - viewport) on each axis.
type Camera struct {
	// OffsetX, OffsetY translate world coordinates to screen coordinates.
	// Always <= 0 in a world larger than the viewport.
	OffsetX, OffsetY float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// World dimensions (clamp bounds)
	WorldW, WorldH float64

	// Smoothing factor applied per Update, in (0, 1]. Higher snaps faster.
	Smoothing float64
}

// New creates a camera at the world origin with the default smoothing.
func New(viewportW, viewportH, worldW, worldH float64) *Camera {
	return &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		Smoothing: 0.3,
	}
}

// Update eases the camera toward centering the target on screen.
// The desired offset is clamped before interpolation and the result is
// clamped again, so the camera never overshoots the world edge even
// mid-glide.
func (c *Camera) Update(targetX, targetY float64) {
	wantX := c.clampX(c.ViewportW/2 - targetX)
	wantY := c.clampY(c.ViewportH/2 - targetY)

	c.OffsetX = c.clampX(c.OffsetX + (wantX-c.OffsetX)*c.Smoothing)
	c.OffsetY = c.clampY(c.OffsetY + (wantY-c.OffsetY)*c.Smoothing)
}

// Snap centers the target immediately, skipping the glide. Used when the
// camera switches worlds or the leader changes discontinuously.
func (c *Camera) Snap(targetX, targetY float64) {
	c.OffsetX = c.clampX(c.ViewportW/2 - targetX)
	c.OffsetY = c.clampY(c.ViewportH/2 - targetY)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx + c.OffsetX, wy + c.OffsetY
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return sx - c.OffsetX, sy - c.OffsetY
}

// IsVisible reports whether a circle at (wx, wy) with the given radius
// could appear on screen. Conservative check for culling.
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	sx, sy := c.WorldToScreen(wx, wy)
	return sx+radius >= 0 && sx-radius <= c.ViewportW &&
		sy+radius >= 0 && sy-radius <= c.ViewportH
}

// Resize updates viewport dimensions and re-clamps the current offset.
func (c *Camera) Resize(viewportW, viewportH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.OffsetX = c.clampX(c.OffsetX)
	c.OffsetY = c.clampY(c.OffsetY)
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible
// area as (minX, minY, maxX, maxY).
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	minX, minY = c.ScreenToWorld(0, 0)
	maxX, maxY = c.ScreenToWorld(c.ViewportW, c.ViewportH)
	return
}

func (c *Camera) clampX(off float64) float64 { return clampOffset(off, c.WorldW, c.ViewportW) }
func (c *Camera) clampY(off float64) float64 { return clampOffset(off, c.WorldH, c.ViewportH) }

// clampOffset keeps an axis offset inside [-(world-viewport), 0]. A world
// smaller than the viewport pins to 0.
func clampOffset(off, world, viewport float64) float64 {
	lo := -(world - viewport)
	if lo > 0 {
		lo = 0
	}
	if off < lo {
		return lo
	}
	if off > 0 {
		return 0
	}
	return off
}
