package render

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/neondrive/camera"
	"github.com/pthm-cable/neondrive/sim"
	"github.com/pthm-cable/neondrive/track"
)

const trailLength = 240

// Viewer renders evaluation frames into a raylib window. It implements the
// evaluation observer; returning an error never aborts the run.
type Viewer struct {
	cam      *camera.Camera
	trk      *track.Track
	trackTex rl.RenderTexture2D
	bakeDown float64 // world units per track texture pixel

	screenW, screenH int32
	worldSize        float64

	trail []sim.Vec2 // leader breadcrumb ring in world space, most recent last

	status   Status
	recorder *FrameRecorder

	open bool
}

// Status is the HUD state updated by the training loop between frames.
type Status struct {
	Generation  int
	BestFitness float64
	Backend     string
}

// NewViewer opens the window and bakes the track texture.
// Must run on the main thread, like all raylib calls.
func NewViewer(screenW, screenH, targetFPS int, trk *track.Track) *Viewer {
	rl.InitWindow(int32(screenW), int32(screenH), "neondrive")
	rl.SetTargetFPS(int32(targetFPS))

	bakeDown := 4.0
	v := &Viewer{
		cam:      camera.New(float64(screenW), float64(screenH), float64(trk.WorldSize), float64(trk.WorldSize)),
		trk:      trk,
		trackTex: bakeTrack(trk, bakeDown),
		bakeDown: bakeDown,
		screenW:  int32(screenW),
		screenH:  int32(screenH),
		worldSize: float64(trk.WorldSize),
		open:     true,
	}
	v.cam.Snap(trk.StartPos.X, trk.StartPos.Y)
	return v
}

// SetTrack swaps the circuit, rebaking the texture.
func (v *Viewer) SetTrack(trk *track.Track) {
	rl.UnloadRenderTexture(v.trackTex)
	v.trk = trk
	v.trackTex = bakeTrack(trk, v.bakeDown)
	v.trail = v.trail[:0]
	v.cam.Snap(trk.StartPos.X, trk.StartPos.Y)
}

// SetStatus updates the HUD state shown on subsequent frames.
func (v *Viewer) SetStatus(s Status) { v.status = s }

// SetRecorder attaches a PNG frame recorder. Nil detaches.
func (v *Viewer) SetRecorder(r *FrameRecorder) { v.recorder = r }

// ShouldClose reports whether the user asked to close the window.
func (v *Viewer) ShouldClose() bool { return rl.WindowShouldClose() }

// Close releases the window and GPU resources.
func (v *Viewer) Close() {
	if !v.open {
		return
	}
	rl.UnloadRenderTexture(v.trackTex)
	rl.CloseWindow()
	v.open = false
}

// ResetGeneration clears per-generation visual state.
func (v *Viewer) ResetGeneration() {
	v.trail = v.trail[:0]
}

// Frame draws one simulation frame. Implements the evaluation observer.
func (v *Viewer) Frame(frame int, cars []*sim.Car, leader int) error {
	if !v.open {
		return nil
	}

	lead := cars[leader]
	v.cam.Update(lead.Pos.X, lead.Pos.Y)

	v.trail = append(v.trail, lead.Pos)
	if len(v.trail) > trailLength {
		v.trail = v.trail[1:]
	}

	rl.BeginDrawing()
	rl.ClearBackground(colorGrass)

	v.drawTrack()
	v.drawTrail()
	v.drawSensors(lead)
	v.drawCheckpointMarker(lead)
	for i, c := range cars {
		v.drawCar(c, i == leader)
	}

	alive := 0
	for _, c := range cars {
		if c.Alive {
			alive++
		}
	}
	drawHUD(HUDData{
		Generation:  v.status.Generation,
		Backend:     v.status.Backend,
		BestFitness: v.status.BestFitness,
		Frame:       frame,
		Alive:       alive,
		Total:       len(cars),
		LeaderGates: lead.GatesPassed,
		LeaderSpeed: lead.Speed(),
		FPS:         rl.GetFPS(),
		ScreenH:     v.screenH,
	})

	rl.EndDrawing()

	if v.recorder != nil {
		if err := v.recorder.Capture(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) toScreenRaw(wx, wy float64) rl.Vector2 {
	sx, sy := v.cam.WorldToScreen(wx, wy)
	return rl.Vector2{X: float32(sx), Y: float32(sy)}
}

func (v *Viewer) drawTrack() {
	texSize := float32(v.trackTex.Texture.Width)
	// Render textures are vertically flipped in raylib.
	src := rl.Rectangle{X: 0, Y: 0, Width: texSize, Height: -texSize}
	dst := rl.Rectangle{
		X:      float32(v.cam.OffsetX),
		Y:      float32(v.cam.OffsetY),
		Width:  float32(v.worldSize),
		Height: float32(v.worldSize),
	}
	rl.DrawTexturePro(v.trackTex.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

func (v *Viewer) drawCar(c *sim.Car, isLeader bool) {
	if !v.cam.IsVisible(c.Pos.X, c.Pos.Y, 60) {
		return
	}

	body := rl.Color{R: 90, G: 170, B: 250, A: 255}
	if isLeader {
		body = rl.Color{R: 250, G: 210, B: 60, A: 255}
	}
	if !c.Alive {
		body = rl.Color{R: 80, G: 80, B: 85, A: 160}
	}

	center := v.toScreenRaw(c.Pos.X, c.Pos.Y)
	rad := c.Heading * math.Pi / 180

	// Triangle pointing along the heading.
	nose := 26.0
	tail := 16.0
	cosH, sinH := math.Cos(rad), math.Sin(rad)
	p1 := rl.Vector2{X: center.X + float32(cosH*nose), Y: center.Y + float32(sinH*nose)}
	leftRad := rad + 2.5
	rightRad := rad - 2.5
	p2 := rl.Vector2{X: center.X + float32(math.Cos(leftRad)*tail), Y: center.Y + float32(math.Sin(leftRad)*tail)}
	p3 := rl.Vector2{X: center.X + float32(math.Cos(rightRad)*tail), Y: center.Y + float32(math.Sin(rightRad)*tail)}
	// Counter-clockwise in screen space, or raylib culls the face.
	rl.DrawTriangle(p1, p3, p2, body)

	if isLeader && c.Alive {
		rl.DrawCircleLinesV(center, 30, rl.Color{R: 250, G: 210, B: 60, A: 120})
	}
}

func (v *Viewer) drawSensors(lead *sim.Car) {
	if !lead.Alive {
		return
	}
	origin := v.toScreenRaw(lead.Pos.X, lead.Pos.Y)
	for _, r := range lead.Radars {
		end := v.toScreenRaw(r.End.X, r.End.Y)
		rl.DrawLineV(origin, end, rl.Color{R: 100, G: 255, B: 150, A: 90})
		rl.DrawCircleV(end, 3, rl.Color{R: 100, G: 255, B: 150, A: 180})
	}
}

func (v *Viewer) drawCheckpointMarker(lead *sim.Car) {
	if len(v.trk.Checkpoints) == 0 {
		return
	}
	next := v.trk.Checkpoints[lead.NextGate%len(v.trk.Checkpoints)]
	if !v.cam.IsVisible(next.X, next.Y, 40) {
		return
	}
	p := v.toScreenRaw(next.X, next.Y)
	rl.DrawCircleLinesV(p, 24, rl.Color{R: 255, G: 120, B: 220, A: 200})
	rl.DrawCircleV(p, 5, rl.Color{R: 255, G: 120, B: 220, A: 255})
}

func (v *Viewer) drawTrail() {
	n := len(v.trail)
	for i := 1; i < n; i++ {
		alpha := uint8(40 + 160*i/n)
		a := v.toScreenRaw(v.trail[i-1].X, v.trail[i-1].Y)
		b := v.toScreenRaw(v.trail[i].X, v.trail[i].Y)
		rl.DrawLineV(a, b, rl.Color{R: 250, G: 210, B: 60, A: alpha})
	}
}
