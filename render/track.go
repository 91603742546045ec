// Package render draws the simulation with raylib: the baked circuit, the
// cars, the leader's sensors and trail, and the HUD. The simulation core
// never imports this package; the viewer attaches as an evaluation observer.
package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/neondrive/track"
)

// Track bake appearance.
var (
	colorGrass    = rl.Color{R: 14, G: 40, B: 22, A: 255}
	colorGrid     = rl.Color{R: 20, G: 52, B: 30, A: 255}
	colorWall     = rl.Color{R: 90, G: 90, B: 100, A: 255}
	colorEdge     = rl.White
	colorAsphalt  = rl.Color{R: 46, G: 46, B: 52, A: 255}
	colorKerbRed  = rl.Color{R: 200, G: 40, B: 40, A: 255}
	colorKerbWhit = rl.Color{R: 230, G: 230, B: 230, A: 255}
	colorDash     = rl.Color{R: 120, G: 120, B: 130, A: 255}
)

// bakeTrack renders the circuit once into a texture at 1/scale resolution.
// The texture is drawn scaled back up every frame, which keeps per-frame
// cost at a single textured quad.
func bakeTrack(trk *track.Track, scale float64) rl.RenderTexture2D {
	texSize := int32(float64(trk.WorldSize) / scale)
	target := rl.LoadRenderTexture(texSize, texSize)

	s := float32(1 / scale)
	pt := func(p track.Point) rl.Vector2 {
		return rl.Vector2{X: float32(p.X) * s, Y: float32(p.Y) * s}
	}

	rl.BeginTextureMode(target)
	rl.ClearBackground(colorGrass)

	// Background grid
	step := int32(float64(200) / scale)
	for x := int32(0); x < texSize; x += step {
		rl.DrawLine(x, 0, x, texSize, colorGrid)
	}
	for y := int32(0); y < texSize; y += step {
		rl.DrawLine(0, y, texSize, y, colorGrid)
	}

	// Road surface: stamp discs along the centerline in three passes so
	// the wall, the white edge line, and the asphalt nest cleanly.
	stampEvery := 10
	passes := []struct {
		radius float64
		color  rl.Color
	}{
		{260, colorWall},
		{235, colorEdge},
		{210, colorAsphalt},
	}
	for _, pass := range passes {
		r := float32(pass.radius) * s
		for i := 0; i < len(trk.Centerline); i += stampEvery {
			rl.DrawCircleV(pt(trk.Centerline[i]), r, pass.color)
		}
	}

	// Kerbs: alternating red and white blocks on the outer edge at the
	// checkpoints, racing-circuit style.
	for gi, cp := range trk.Checkpoints {
		color := colorKerbRed
		if gi%2 == 1 {
			color = colorKerbWhit
		}
		rl.DrawCircleV(pt(cp), float32(18)*s, color)
	}

	// Dashed centerline
	dashLen := 24
	for i := 0; i+dashLen/2 < len(trk.Centerline); i += dashLen {
		a := pt(trk.Centerline[i])
		b := pt(trk.Centerline[i+dashLen/2])
		rl.DrawLineEx(a, b, 2*s, colorDash)
	}

	// Start line
	rl.DrawCircleV(pt(trk.StartPos), float32(30)*s, rl.Color{R: 240, G: 240, B: 60, A: 200})

	rl.EndTextureMode()
	return target
}
