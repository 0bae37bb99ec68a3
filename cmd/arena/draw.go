package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/robosim/common"
	"github.com/milk9111/robosim/render"
)

// camera looks straight down at the ground plane. World x goes right and
// world z goes down the screen.
type camera struct {
	x, z   float64
	zoom   float64
	width  float64
	height float64
}

func (c camera) toScreen(p common.Vec2) (float64, float64) {
	return (p.X-c.x)*c.zoom + c.width/2, (p.Y-c.z)*c.zoom + c.height/2
}

// drawMeshes outlines every visible mesh's ground footprint in scene order.
func drawMeshes(screen *ebiten.Image, scene *render.Scene, cam camera) {
	for _, m := range scene.Meshes() {
		if m == nil || !m.Visible {
			continue
		}
		outline := render.Footprint(m)
		if len(outline) < 2 {
			continue
		}
		clr := m.Material.RGBA()
		drawOutline(screen, outline, cam, clr)
		if m.Material.Transparent {
			continue
		}
		// solid meshes get a cross so overlapping outlines stay readable
		if len(outline) >= 4 {
			x1, y1 := cam.toScreen(outline[0])
			x2, y2 := cam.toScreen(outline[len(outline)/2])
			ebitenutil.DrawLine(screen, x1, y1, x2, y2, clr)
		}
	}
}

func drawOutline(screen *ebiten.Image, pts []common.Vec2, cam camera, clr color.NRGBA) {
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		x1, y1 := cam.toScreen(a)
		x2, y2 := cam.toScreen(b)
		ebitenutil.DrawLine(screen, x1, y1, x2, y2, clr)
	}
}
