// Track generation preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/trackpreview
package main

import (
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/neondrive/track"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 640
	panelWidth   = windowWidth - previewSize - 30
	worldSize    = 4000
)

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Track Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := track.DefaultParams()
	seed := int64(12345)

	// Downsampled mask texture
	gridSize := 512
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var trk *track.Track
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			trk = track.Generate(seed, worldSize, params)
			updateTexture(texture, trk, gridSize)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridSize), Height: float32(gridSize)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		status := "ok"
		if trk.Degenerate {
			status = "DEGENERATE (polygon fallback)"
		}
		rl.DrawText(
			fmt.Sprintf("Seed: %d  Checkpoints: %d  Drivable: %d px  %s",
				trk.Seed, len(trk.Checkpoints), trk.Mask.CountDrivable(), status),
			15, statsY, 16, rl.DarkGray,
		)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Track Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		panelY = intSlider(panelX, panelY, "Control points", &params.ControlPoints, 6, 40, &needsRegen)
		panelY = floatSlider(panelX, panelY, "Min radius", &params.MinRadius, 400, 1900, &needsRegen)
		panelY = floatSlider(panelX, panelY, "Max radius", &params.MaxRadius, 500, 1950, &needsRegen)
		panelY = intSlider(panelX, panelY, "Samples", &params.Samples, 500, 6000, &needsRegen)
		panelY = floatSlider(panelX, panelY, "Road width", &params.RoadWidth, 150, 800, &needsRegen)
		panelY = intSlider(panelX, panelY, "Checkpoint interval", &params.CheckpointInterval, 10, 300, &needsRegen)

		panelY += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = track.DefaultParams()
			seed = 12345
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlLines := []string{
			"track:",
			fmt.Sprintf("  control_points: %d", params.ControlPoints),
			fmt.Sprintf("  min_radius: %.0f", params.MinRadius),
			fmt.Sprintf("  max_radius: %.0f", params.MaxRadius),
			fmt.Sprintf("  samples: %d", params.Samples),
			fmt.Sprintf("  road_width: %.0f", params.RoadWidth),
			fmt.Sprintf("  checkpoint_interval: %d", params.CheckpointInterval),
		}
		for _, line := range yamlLines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.EndDrawing()
	}
}

func floatSlider(x, y float32, label string, value *float64, min, max float32, needsRegen *bool) float32 {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	y += 18
	newVal := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf("%.0f", min), fmt.Sprintf("%.0f", max),
		float32(*value), min, max,
	)
	rl.DrawText(fmt.Sprintf("%.0f", *value), int32(x+float32(panelWidth-70)), int32(y+2), 16, rl.DarkGray)
	if float64(newVal) != *value {
		*value = float64(newVal)
		*needsRegen = true
	}
	return y + 35
}

func intSlider(x, y float32, label string, value *int, min, max float32, needsRegen *bool) float32 {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	y += 18
	newVal := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf("%.0f", min), fmt.Sprintf("%.0f", max),
		float32(*value), min, max,
	)
	rl.DrawText(fmt.Sprintf("%d", *value), int32(x+float32(panelWidth-70)), int32(y+2), 16, rl.DarkGray)
	if int(newVal) != *value {
		*value = int(newVal)
		*needsRegen = true
	}
	return y + 35
}

// updateTexture rasterizes the collision mask into the preview texture.
func updateTexture(texture rl.Texture2D, trk *track.Track, gridSize int) {
	pixels := make([]color.RGBA, gridSize*gridSize)
	scale := trk.WorldSize / gridSize

	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			c := color.RGBA{R: 18, G: 50, B: 28, A: 255}
			if trk.Mask.At(x*scale, y*scale) {
				c = color.RGBA{R: 52, G: 52, B: 58, A: 255}
			}
			pixels[y*gridSize+x] = c
		}
	}

	// Checkpoints and start pose in world space, marked on top.
	mark := func(p track.Point, col color.RGBA) {
		px := int(p.X) / scale
		py := int(p.Y) / scale
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				mx, my := px+dx, py+dy
				if mx >= 0 && mx < gridSize && my >= 0 && my < gridSize {
					pixels[my*gridSize+mx] = col
				}
			}
		}
	}
	for _, cp := range trk.Checkpoints {
		mark(cp, color.RGBA{R: 255, G: 120, B: 220, A: 255})
	}
	mark(trk.StartPos, color.RGBA{R: 240, G: 240, B: 60, A: 255})

	rl.UpdateTexture(texture, pixels)
}
