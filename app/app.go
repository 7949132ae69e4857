package app

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"hexstudio/hexruntime"
)

// Game implements ebiten.Game interface
type Game struct {
	mapView *HexMapView

	screenW, screenH int
}

// New creates a new Game instance. The map runtime is populated from the
// autosave when one exists, otherwise a fresh default grid is generated.
func New() *Game {
	if os.Getenv("HEXSTUDIO_SKIP_AUTOSAVE_LOAD") != "1" {
		if err := hexruntime.LoadAutoSave(); err == nil {
			fmt.Println("[APP] Restored autosave")
		}
	}
	if hexruntime.TileCount() == 0 {
		if err := hexruntime.GenerateGrid(hexruntime.DefaultGenConfig()); err != nil {
			fmt.Printf("[APP] Default grid generation failed: %v\n", err)
		}
	}

	return &Game{
		mapView: NewHexMapView(),
		screenW: 1600,
		screenH: 900,
	}
}

// MapView exposes the map component, used by the script engine to drive
// tools programmatically.
func (g *Game) MapView() *HexMapView { return g.mapView }

// Update updates the game state
func (g *Game) Update() error {
	g.mapView.Update(g.screenW, g.screenH)
	return nil
}

// Draw draws the game state to the screen
func (g *Game) Draw(screen *ebiten.Image) {
	g.mapView.Draw(screen)
}

// Layout returns the layout of the game
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 {
		outsideWidth = 1600
	}
	if outsideHeight <= 0 {
		outsideHeight = 900
	}
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
