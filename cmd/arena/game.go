package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/robosim/prefabs"
	"github.com/milk9111/robosim/scene"
	"go.uber.org/zap"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	pixelsPerMeter = 48
	zoomStep       = 1.1
)

var background = color.NRGBA{R: 0x1c, G: 0x1f, B: 0x24, A: 0xff}

type Game struct {
	arena   string
	debug   bool
	paused  bool
	logger  *zap.Logger
	scene   *scene.Scene
	watcher *prefabs.Watcher
	camera  camera
}

func NewGame(arena string, debug, watch bool, logger *zap.Logger) (*Game, error) {
	g := &Game{
		arena:  arena,
		debug:  debug,
		logger: logger,
		camera: camera{zoom: pixelsPerMeter, width: baseWidth, height: baseHeight},
	}
	if err := g.load(); err != nil {
		return nil, err
	}
	if watch {
		w, err := prefabs.NewWatcher()
		if err != nil {
			logger.Warn("arena: hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) load() error {
	spec, err := prefabs.LoadArenaSpec(g.arena)
	if err != nil {
		return err
	}
	sc, err := scene.Build(spec, g.logger)
	if err != nil {
		return err
	}
	sc.AddStage(zoneEventLogger(g.logger))
	g.scene = sc
	return nil
}

// Close stops the file watcher.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.pollReload()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.load(); err != nil {
			g.logger.Warn("arena: reload failed", zap.Error(err))
		}
	}
	_, wheel := ebiten.Wheel()
	if wheel > 0 {
		g.camera.zoom *= zoomStep
	} else if wheel < 0 {
		g.camera.zoom /= zoomStep
	}

	if !g.paused {
		g.scene.Tick(1000.0 / float64(ebiten.TPS()))
	}
	return nil
}

// pollReload applies file changes seen by the watcher. A broken spec keeps
// the running scene.
func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	changed := false
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Info("arena: prefab changed", zap.String("file", name))
			changed = true
			continue
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("arena: watcher error", zap.Error(err))
			continue
		default:
		}
		break
	}
	if !changed {
		return
	}
	if err := g.load(); err != nil {
		g.logger.Warn("arena: reload failed, keeping current scene", zap.Error(err))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	drawMeshes(screen, g.scene.Meshes(), g.camera)
	if g.debug {
		drawPhysicsDebug(screen, g.scene.World().Space(), g.camera)
	}
	ebitenutil.DebugPrint(screen, g.hud())
}

func (g *Game) hud() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  t=%.1fs  FPS: %.1f", g.scene.Name(), g.scene.ElapsedMs()/1000, ebiten.ActualFPS())
	if g.paused {
		b.WriteString("  [paused]")
	}
	for _, z := range g.scene.Zones() {
		if z.Occupied() {
			fmt.Fprintf(&b, "\n%s: %d inside", z.ZoneID(), len(z.Occupants()))
		}
	}
	return b.String()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
