package render

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds everything the heads-up display shows each frame.
type HUDData struct {
	Generation  int
	Backend     string
	BestFitness float64
	Frame       int
	Alive       int
	Total       int
	LeaderGates int
	LeaderSpeed float64
	FPS         int32
	ScreenH     int32
}

func drawHUD(data HUDData) {
	rl.DrawRectangle(0, 0, 330, 100, rl.Color{R: 0, G: 0, B: 0, A: 140})

	rl.DrawText(fmt.Sprintf("Generation %d  [%s]", data.Generation, data.Backend), 10, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Alive: %d/%d | Frame: %d | FPS: %d", data.Alive, data.Total, data.Frame, data.FPS),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Leader: %d gates @ %.0f | Best: %.0f", data.LeaderGates, data.LeaderSpeed, data.BestFitness),
		10, 55, 16, rl.LightGray,
	)

	status := "Racing"
	if data.Alive == 0 {
		status = "FIELD RETIRED"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)

	rl.DrawText("ESC quit", 10, data.ScreenH-25, 14, rl.Gray)
}
