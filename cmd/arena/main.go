package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/robosim/logging"
	"go.uber.org/zap"
)

func main() {
	arena := flag.String("arena", "arena.yaml", "arena spec in prefabs/ (embedded copy used when missing on disk)")
	debug := flag.Bool("debug", false, "debug logging and physics overlay")
	watch := flag.Bool("watch", false, "reload the arena when files under prefabs/ change")
	headless := flag.Int("headless", 0, "run this many ticks without a window and exit")
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if *headless > 0 {
		if err := runHeadless(*arena, *headless, logger); err != nil {
			logger.Fatal("arena: headless run failed", zap.Error(err))
		}
		return
	}

	game, err := NewGame(*arena, *debug, *watch, logger)
	if err != nil {
		logger.Fatal("arena: load failed", zap.String("arena", *arena), zap.Error(err))
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("robosim - " + game.scene.Name())

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("arena: game loop", zap.Error(err))
	}
}
